package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pipelinekit/stagegen/internal/web/auth"
	"github.com/pipelinekit/stagegen/internal/web/ratelimit"
)

// RateLimitConfig configures the rate limiting middleware
type RateLimitConfig struct {
	Limiter ratelimit.Limiter
	// KeyFunc extracts the rate limit key; an empty key skips limiting
	KeyFunc func(*http.Request) string
	// FailOpen lets requests through when the limiter fails
	FailOpen bool
	Logger   *zap.Logger
	// Now is used for Retry-After; defaults to time.Now
	Now func() time.Time
}

// RateLimit limits requests per client with the given limiter, failing open
func RateLimit(limiter ratelimit.Limiter, logger *zap.Logger) Middleware {
	return RateLimitWithConfig(RateLimitConfig{
		Limiter:  limiter,
		KeyFunc:  ClientKeyFunc,
		FailOpen: true,
		Logger:   logger,
	})
}

// RateLimitWithConfig creates a rate limiting middleware with custom configuration
func RateLimitWithConfig(config RateLimitConfig) Middleware {
	if config.KeyFunc == nil {
		config.KeyFunc = ClientKeyFunc
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := config.KeyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			info, err := config.Limiter.Allow(r.Context(), key)
			if err != nil {
				config.Logger.Warn("rate limit check failed",
					zap.String("key", key),
					zap.String("request_id", GetRequestID(r.Context())),
					zap.Error(err),
				)
				if config.FailOpen {
					next.ServeHTTP(w, r)
				} else {
					http.Error(w, "Rate limit check failed", http.StatusServiceUnavailable)
				}
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt.Unix(), 10))

			if !info.Allowed {
				retryAfter := int64(info.ResetAt.Sub(config.Now()).Seconds())
				w.Header().Set("Retry-After", strconv.FormatInt(max(retryAfter, 0), 10))
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientKeyFunc keys authenticated requests by component and others by client IP
func ClientKeyFunc(r *http.Request) string {
	if componentID := auth.GetComponent(r.Context()); componentID != "" {
		return "component:" + componentID
	}
	return "ip:" + ClientIP(r)
}

// ClientIP returns the first X-Forwarded-For address, X-Real-IP, or the remote address
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
