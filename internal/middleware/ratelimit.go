package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AnshRaj112/lighttribe-backend/internal/logging"
	"github.com/AnshRaj112/lighttribe-backend/internal/metrics"
	"github.com/AnshRaj112/lighttribe-backend/pkg/clientip"
)

// RateLimitKeyPrefix is the Redis key prefix for the shared limiter.
const RateLimitKeyPrefix = "ratelimit:"

// RedisRateLimit is a fixed-window limiter shared by every instance through
// Redis. Authenticated callers are counted per user, everyone else per IP.
// It fails open when Redis errors and is a no-op when rdb is nil.
func RedisRateLimit(rdb *redis.Client, limit int, window time.Duration, trustProxy bool) func(http.Handler) http.Handler {
	if rdb == nil || limit <= 0 || window <= 0 {
		return passthrough
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := "ip:" + clientip.FromRequest(r, trustProxy)
			if u, ok := UserFromContext(r.Context()); ok {
				subject = "user:" + u.ID.Hex()
			}

			ctx, cancel := context.WithTimeout(r.Context(), time.Second)
			count, ttl, err := hit(ctx, rdb, RateLimitKeyPrefix+subject, window)
			cancel()
			if err != nil {
				logging.Ctx(r.Context()).Warn().Err(err).Msg("rate limit check failed")
				next.ServeHTTP(w, r)
				return
			}

			remaining := limit - int(count)
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))

			if int(count) > limit {
				metrics.RateLimited.WithLabelValues("redis").Inc()
				w.Header().Set("Retry-After", strconv.Itoa(int(ttl.Seconds())+1))
				tooManyRequests(w, "Rate limit exceeded. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// hit counts one request in the window keyed by key and returns the count
// and the time left in the window.
func hit(ctx context.Context, rdb *redis.Client, key string, window time.Duration) (int64, time.Duration, error) {
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	left := ttl.Val()
	if left < 0 {
		left = window
	}
	return incr.Val(), left, nil
}
