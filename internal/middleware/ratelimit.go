package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter counts requests per key in Redis within a fixed window.
// The key function usually returns the authenticated user id; when it
// returns "" the limiter falls back to the client IP.
type RateLimiter struct {
	redis   *redis.Client
	limit   int
	window  time.Duration
	prefix  string
	keyFunc func(r *http.Request) string
}

func NewRateLimiter(redisClient *redis.Client, limit int, window time.Duration, prefix string, keyFunc func(r *http.Request) string) *RateLimiter {
	return &RateLimiter{
		redis:   redisClient,
		limit:   limit,
		window:  window,
		prefix:  prefix,
		keyFunc: keyFunc,
	}
}

func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := ""
		if rl.keyFunc != nil {
			key = rl.keyFunc(r)
		}
		if key == "" {
			key = getClientIP(r)
		}
		redisKey := rl.prefix + key

		ctx := r.Context()

		pipe := rl.redis.Pipeline()
		incr := pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, rl.window)
		if _, err := pipe.Exec(ctx); err != nil {
			// Redis down must not take writes down with it.
			next.ServeHTTP(w, r)
			return
		}

		count := int(incr.Val())
		remaining := rl.limit - count
		if remaining < 0 {
			remaining = 0
		}
		reset := time.Now().Truncate(rl.window).Add(rl.window).Unix()

		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", reset))

		if count > rl.limit {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", reset-time.Now().Unix()))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"Rate limit exceeded. Please try again later."}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func getClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
