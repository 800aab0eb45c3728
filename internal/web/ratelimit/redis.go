package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow trims the sorted set of key to the window and records the
// request when the limit allows it. Returns {allowed, count}.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[3])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', ARGV[2])

	local current = redis.call('ZCARD', key)
	if current < limit then
		redis.call('ZADD', key, ARGV[1], ARGV[5])
		redis.call('EXPIRE', key, ARGV[4])
		return {1, current + 1}
	end
	return {0, current}
`)

// RedisLimiter is a sliding window limiter shared through Redis
type RedisLimiter struct {
	client     *redis.Client
	limit      int
	window     time.Duration
	prefix     string
	now        func() time.Time
	ownsClient bool
}

// RedisConfig configures a RedisLimiter
type RedisConfig struct {
	Client *redis.Client
	// Limit is the maximum number of requests in the window
	Limit  int
	Window time.Duration
	// Prefix is prepended to every Redis key
	Prefix string
}

// NewRedisLimiter creates a sliding window limiter on client
func NewRedisLimiter(config RedisConfig) (*RedisLimiter, error) {
	if config.Client == nil {
		return nil, errors.New("redis client is required")
	}
	if config.Limit <= 0 {
		return nil, errors.New("limit must be greater than 0")
	}
	if config.Window <= 0 {
		return nil, errors.New("window must be greater than 0")
	}

	return &RedisLimiter{
		client: config.Client,
		limit:  config.Limit,
		window: config.Window,
		prefix: config.Prefix,
		now:    time.Now,
	}, nil
}

// Allow records a request for key if the window has room
func (r *RedisLimiter) Allow(ctx context.Context, key string) (*Info, error) {
	now := r.now()
	windowStart := now.Add(-r.window)
	ttl := int64(r.window / time.Second)
	if ttl < 1 {
		ttl = 1
	}

	result, err := slidingWindow.Run(ctx, r.client, []string{r.prefix + key},
		now.UnixNano(),
		windowStart.UnixNano(),
		r.limit,
		ttl,
		strconv.FormatInt(now.UnixNano(), 10)+"-"+uuid.NewString(),
	).Result()
	if err != nil {
		return nil, fmt.Errorf("redis rate limit check failed: %w", err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return nil, errors.New("unexpected redis script result")
	}
	allowed, ok := values[0].(int64)
	if !ok {
		return nil, errors.New("invalid allowed value from redis")
	}
	count, ok := values[1].(int64)
	if !ok {
		return nil, errors.New("invalid count value from redis")
	}

	return &Info{
		Limit:     r.limit,
		Remaining: max(r.limit-int(count), 0),
		ResetAt:   now.Add(r.window),
		Allowed:   allowed == 1,
	}, nil
}

// Reset removes the recorded requests of key
func (r *RedisLimiter) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Count returns the number of requests of key in the current window
func (r *RedisLimiter) Count(ctx context.Context, key string) (int, error) {
	redisKey := r.prefix + key
	windowStart := r.now().Add(-r.window)

	pipe := r.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to get count: %w", err)
	}
	return int(countCmd.Val()), nil
}

// Close closes the Redis client when the limiter created it
func (r *RedisLimiter) Close() error {
	if r.ownsClient {
		return r.client.Close()
	}
	return nil
}
