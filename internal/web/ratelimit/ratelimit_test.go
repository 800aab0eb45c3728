package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestBucket(capacity int, refill time.Duration, clock *fakeClock) *TokenBucket {
	tb := NewTokenBucket(TokenBucketConfig{Capacity: capacity, RefillRate: refill})
	tb.now = clock.Now
	return tb
}

func TestTokenBucketFirstRequest(t *testing.T) {
	clock := newFakeClock()
	tb := newTestBucket(10, time.Minute, clock)
	defer tb.Close()

	info, err := tb.Allow(context.Background(), "client")
	require.NoError(t, err)
	assert.True(t, info.Allowed)
	assert.Equal(t, 10, info.Limit)
	assert.Equal(t, 9, info.Remaining)
	assert.Equal(t, clock.Now().Add(time.Minute), info.ResetAt)
}

func TestTokenBucketExhaustAndRefill(t *testing.T) {
	clock := newFakeClock()
	tb := newTestBucket(3, time.Minute, clock)
	defer tb.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		info, err := tb.Allow(ctx, "client")
		require.NoError(t, err)
		assert.True(t, info.Allowed, "request %d", i)
	}

	info, err := tb.Allow(ctx, "client")
	require.NoError(t, err)
	assert.False(t, info.Allowed)
	assert.Equal(t, 0, info.Remaining)

	// a third of the refill period buys one token
	clock.Advance(20 * time.Second)
	info, err = tb.Allow(ctx, "client")
	require.NoError(t, err)
	assert.True(t, info.Allowed)
	assert.Equal(t, 0, info.Remaining)

	clock.Advance(10 * time.Minute)
	info, err = tb.Allow(ctx, "client")
	require.NoError(t, err)
	assert.True(t, info.Allowed)
	assert.Equal(t, 2, info.Remaining)
}

func TestTokenBucketKeysAreIndependent(t *testing.T) {
	clock := newFakeClock()
	tb := newTestBucket(1, time.Minute, clock)
	defer tb.Close()
	ctx := context.Background()

	info, err := tb.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, info.Allowed)

	info, err = tb.Allow(ctx, "a")
	require.NoError(t, err)
	assert.False(t, info.Allowed)

	info, err = tb.Allow(ctx, "b")
	require.NoError(t, err)
	assert.True(t, info.Allowed)
	assert.Equal(t, 2, tb.Len())
}

func TestTokenBucketDropIdle(t *testing.T) {
	clock := newFakeClock()
	tb := newTestBucket(5, time.Minute, clock)
	defer tb.Close()

	_, err := tb.Allow(context.Background(), "old")
	require.NoError(t, err)
	clock.Advance(3 * time.Minute)
	_, err = tb.Allow(context.Background(), "new")
	require.NoError(t, err)

	tb.dropIdle()
	assert.Equal(t, 1, tb.Len())
}

func TestTokenBucketCloseTwice(t *testing.T) {
	tb := NewTokenBucket(TokenBucketConfig{Capacity: 1, RefillRate: time.Second, CleanupInterval: time.Hour})
	assert.NoError(t, tb.Close())
	assert.NoError(t, tb.Close())
}

func TestTokenBucketConcurrent(t *testing.T) {
	tb := NewTokenBucket(TokenBucketConfig{Capacity: 50, RefillRate: time.Hour})
	defer tb.Close()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			info, err := tb.Allow(context.Background(), "shared")
			if err == nil && info.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewRedisLimiterInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  RedisConfig
		wantErr string
	}{
		{"nil client", RedisConfig{Limit: 1, Window: time.Minute}, "redis client is required"},
		{"zero limit", RedisConfig{Client: &redis.Client{}, Window: time.Minute}, "limit must be greater than 0"},
		{"zero window", RedisConfig{Client: &redis.Client{}, Limit: 1}, "window must be greater than 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRedisLimiter(tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRedisLimiterSlidingWindow(t *testing.T) {
	client := setupTestRedis(t)
	clock := newFakeClock()

	limiter, err := NewRedisLimiter(RedisConfig{Client: client, Limit: 2, Window: time.Minute, Prefix: "test:"})
	require.NoError(t, err)
	limiter.now = clock.Now
	ctx := context.Background()

	info, err := limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.True(t, info.Allowed)
	assert.Equal(t, 1, info.Remaining)

	clock.Advance(30 * time.Second)
	info, err = limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.True(t, info.Allowed)
	assert.Equal(t, 0, info.Remaining)

	info, err = limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.False(t, info.Allowed)

	count, err := limiter.Count(ctx, "client")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// the first request leaves the window
	clock.Advance(31 * time.Second)
	info, err = limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.True(t, info.Allowed)

	require.NoError(t, limiter.Reset(ctx, "client"))
	count, err = limiter.Count(ctx, "client")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRedisLimiterSameInstant(t *testing.T) {
	client := setupTestRedis(t)
	clock := newFakeClock()

	limiter, err := NewRedisLimiter(RedisConfig{Client: client, Limit: 3, Window: time.Minute})
	require.NoError(t, err)
	limiter.now = clock.Now

	for i := 0; i < 3; i++ {
		info, err := limiter.Allow(context.Background(), "client")
		require.NoError(t, err)
		assert.True(t, info.Allowed, "request %d", i)
	}
	info, err := limiter.Allow(context.Background(), "client")
	require.NoError(t, err)
	assert.False(t, info.Allowed)
}

func TestRedisLimiterUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	limiter, err := NewRedisLimiter(RedisConfig{Client: client, Limit: 1, Window: time.Minute})
	require.NoError(t, err)

	_, err = limiter.Allow(context.Background(), "client")
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	valid := DefaultConfig()
	valid.Enabled = true
	assert.NoError(t, valid.Validate())

	disabled := Config{}
	assert.NoError(t, disabled.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero limit", func(c *Config) { c.Limit = 0 }},
		{"zero window", func(c *Config) { c.Window = 0 }},
		{"unknown backend", func(c *Config) { c.Backend = "memcached" }},
		{"redis without url", func(c *Config) { c.Backend = BackendRedis }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true

	limiter, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &TokenBucket{}, limiter)
	require.NoError(t, limiter.Close())

	mr := miniredis.RunT(t)
	cfg.Backend = BackendRedis
	cfg.RedisURL = "redis://" + mr.Addr() + "/0"

	limiter, err = New(cfg)
	require.NoError(t, err)
	require.IsType(t, &RedisLimiter{}, limiter)

	info, err := limiter.Allow(context.Background(), "client")
	require.NoError(t, err)
	assert.True(t, info.Allowed)
	require.NoError(t, limiter.Close())

	cfg.RedisURL = "not a url"
	_, err = New(cfg)
	require.Error(t, err)
}
