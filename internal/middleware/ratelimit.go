package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AnshRaj112/niknak-backend/internal/response"
	"github.com/AnshRaj112/niknak-backend/pkg/clientip"
)

const (
	// DefaultAuthRateLimit is the number of auth requests allowed per window
	DefaultAuthRateLimit = 25
	// DefaultAuthRateWindow is 120 seconds
	DefaultAuthRateWindow = 120 * time.Second
	// RateLimitKeyPrefix is the Redis key prefix for rate limiting
	RateLimitKeyPrefix = "ratelimit:auth:"
)

// AuthRateLimiter is a fixed-window per-IP counter in Redis, shared by
// every instance of the server. Register and login sit behind it.
type AuthRateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

func NewAuthRateLimiter(rdb *redis.Client, limit int, window time.Duration) *AuthRateLimiter {
	if limit <= 0 {
		limit = DefaultAuthRateLimit
	}
	if window <= 0 {
		window = DefaultAuthRateWindow
	}
	return &AuthRateLimiter{rdb: rdb, limit: limit, window: window}
}

func (l *AuthRateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key := RateLimitKeyPrefix + clientip.RealClientIP(r)

		pipe := l.rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		ttlCmd := pipe.TTL(ctx, key)
		if _, err := pipe.Exec(ctx); err != nil {
			// If Redis fails, allow the request (fail open)
			slog.WarnContext(ctx, "rate limiter unavailable", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		count := incr.Val()

		// A fresh key, or one whose earlier Expire was lost, has no TTL.
		// Arm it here so the counter can never outlive its window.
		ttl := ttlCmd.Val()
		if ttl < 0 {
			if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
				slog.WarnContext(ctx, "rate limiter expire failed", "key", key, "error", err)
			}
			ttl = l.window
		}

		remaining := l.limit - int(count)
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))

		if int(count) > l.limit {
			w.Header().Set("Retry-After", strconv.Itoa(int(ttl.Round(time.Second).Seconds())))
			response.Fail(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}
