// Package ratelimit limits API requests per client key, either in process
// with a token bucket or shared between instances through Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Limiter decides whether a request identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (*Info, error)
	Close() error
}

// Info is the limit state after a call to Allow
type Info struct {
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Remaining is the number of requests left in the current window
	Remaining int
	// ResetAt is when the window resets
	ResetAt time.Time
	Allowed bool
}

// Config selects and sizes a limiter
type Config struct {
	Enabled  bool          `mapstructure:"enabled"`
	Backend  string        `mapstructure:"backend"`
	Limit    int           `mapstructure:"limit"`
	Window   time.Duration `mapstructure:"window"`
	RedisURL string        `mapstructure:"redis_url"`
	Prefix   string        `mapstructure:"prefix"`
}

// DefaultConfig allows 120 requests per minute and client, in memory
func DefaultConfig() Config {
	return Config{
		Backend: BackendMemory,
		Limit:   120,
		Window:  time.Minute,
		Prefix:  "stagegen:ratelimit:",
	}
}

// Validate checks the configuration of an enabled limiter
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Limit <= 0 {
		return fmt.Errorf("limit must be greater than 0, got: %d", c.Limit)
	}
	if c.Window <= 0 {
		return fmt.Errorf("window must be greater than 0, got: %s", c.Window)
	}
	switch c.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("redis_url is required for the %q backend", BackendRedis)
		}
	default:
		return fmt.Errorf("backend must be %q or %q, got: %s", BackendMemory, BackendRedis, c.Backend)
	}
	return nil
}

// New creates the limiter described by cfg
func New(cfg Config) (Limiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Backend == BackendRedis {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis_url: %w", err)
		}
		limiter, err := NewRedisLimiter(RedisConfig{
			Client: redis.NewClient(opts),
			Limit:  cfg.Limit,
			Window: cfg.Window,
			Prefix: cfg.Prefix,
		})
		if err != nil {
			return nil, err
		}
		limiter.ownsClient = true
		return limiter, nil
	}

	return NewTokenBucket(TokenBucketConfig{
		Capacity:        cfg.Limit,
		RefillRate:      cfg.Window,
		CleanupInterval: 5 * cfg.Window,
	}), nil
}
