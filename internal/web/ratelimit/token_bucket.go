package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenBucket is an in-memory token bucket per key
type TokenBucket struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	capacity   int
	refillRate time.Duration
	now        func() time.Time

	cleanup   *time.Ticker
	done      chan struct{}
	closeOnce sync.Once
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// TokenBucketConfig sizes a token bucket
type TokenBucketConfig struct {
	// Capacity is the maximum number of tokens in a bucket
	Capacity int
	// RefillRate is the time it takes to refill an empty bucket
	RefillRate time.Duration
	// CleanupInterval is how often idle buckets are dropped; 0 disables it
	CleanupInterval time.Duration
}

// NewTokenBucket creates a token bucket limiter
func NewTokenBucket(config TokenBucketConfig) *TokenBucket {
	tb := &TokenBucket{
		buckets:    make(map[string]*bucket),
		capacity:   config.Capacity,
		refillRate: config.RefillRate,
		now:        time.Now,
		done:       make(chan struct{}),
	}

	if config.CleanupInterval > 0 {
		tb.cleanup = time.NewTicker(config.CleanupInterval)
		go tb.cleanupLoop()
	}

	return tb
}

// Allow takes a token from the bucket of key
func (tb *TokenBucket) Allow(ctx context.Context, key string) (*Info, error) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()

	b, exists := tb.buckets[key]
	if !exists {
		b = &bucket{
			tokens:     tb.capacity - 1,
			lastRefill: now,
		}
		tb.buckets[key] = b

		return &Info{
			Limit:     tb.capacity,
			Remaining: b.tokens,
			ResetAt:   now.Add(tb.refillRate),
			Allowed:   true,
		}, nil
	}

	// refill proportionally: capacity tokens per refillRate
	if elapsed := now.Sub(b.lastRefill); elapsed > 0 {
		refill := int(float64(tb.capacity) * elapsed.Seconds() / tb.refillRate.Seconds())
		if refill > 0 {
			b.tokens = min(tb.capacity, b.tokens+refill)
			b.lastRefill = now
		}
	}

	if b.tokens > 0 {
		b.tokens--
		return &Info{
			Limit:     tb.capacity,
			Remaining: b.tokens,
			ResetAt:   b.lastRefill.Add(tb.refillRate),
			Allowed:   true,
		}, nil
	}

	return &Info{
		Limit:     tb.capacity,
		Remaining: 0,
		ResetAt:   b.lastRefill.Add(tb.refillRate),
		Allowed:   false,
	}, nil
}

// Len returns the number of tracked keys
func (tb *TokenBucket) Len() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return len(tb.buckets)
}

func (tb *TokenBucket) cleanupLoop() {
	for {
		select {
		case <-tb.cleanup.C:
			tb.dropIdle()
		case <-tb.done:
			return
		}
	}
}

// dropIdle removes buckets not refilled for two refill periods
func (tb *TokenBucket) dropIdle() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	threshold := 2 * tb.refillRate
	now := tb.now()
	for key, b := range tb.buckets {
		if now.Sub(b.lastRefill) > threshold {
			delete(tb.buckets, key)
		}
	}
}

// Close stops the cleanup goroutine
func (tb *TokenBucket) Close() error {
	tb.closeOnce.Do(func() {
		close(tb.done)
		if tb.cleanup != nil {
			tb.cleanup.Stop()
		}
	})
	return nil
}
