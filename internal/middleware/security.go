package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/AnshRaj112/lighttribe-backend/internal/config"
	"github.com/AnshRaj112/lighttribe-backend/internal/metrics"
	"github.com/AnshRaj112/lighttribe-backend/pkg/clientip"
)

const (
	headerXContentTypeOptions     = "X-Content-Type-Options"
	headerXFrameOptions           = "X-Frame-Options"
	headerContentSecurityPolicy   = "Content-Security-Policy"
	headerStrictTransportSecurity = "Strict-Transport-Security"
	headerReferrerPolicy          = "Referrer-Policy"
)

// SecurityHeaders sets security-related response headers for a JSON API.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerXContentTypeOptions, "nosniff")
		w.Header().Set(headerXFrameOptions, "DENY")
		w.Header().Set(headerContentSecurityPolicy, "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set(headerStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		w.Header().Set(headerReferrerPolicy, "no-referrer")
		next.ServeHTTP(w, r)
	})
}

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterTTL             = 30 * time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// ipLimiters hands out one token bucket per client IP and forgets buckets
// idle for longer than limiterTTL.
type ipLimiters struct {
	limit rate.Limit
	burst int

	mu          sync.Mutex
	entries     map[string]*limiterEntry
	cleanupOnce sync.Once
}

func newIPLimiters(limit rate.Limit, burst int) *ipLimiters {
	return &ipLimiters{limit: limit, burst: burst, entries: make(map[string]*limiterEntry)}
}

func (l *ipLimiters) get(ip string) *rate.Limiter {
	l.cleanupOnce.Do(func() { go l.cleanup() })

	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[ip] = e
	}
	e.lastUse = time.Now()
	return e.limiter
}

func (l *ipLimiters) cleanup() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()
	for range ticker.C {
		l.mu.Lock()
		now := time.Now()
		for ip, e := range l.entries {
			if now.Sub(e.lastUse) > limiterTTL {
				delete(l.entries, ip)
			}
		}
		l.mu.Unlock()
	}
}

// GlobalRateLimit allows each IP requests per window on average, with bursts
// up to a tenth of that. Returns 429 when exceeded.
func GlobalRateLimit(requests int, window time.Duration, trustProxy bool) func(http.Handler) http.Handler {
	if requests <= 0 || window <= 0 {
		return passthrough
	}
	burst := requests / 10
	if burst < 1 {
		burst = 1
	}
	limiters := newIPLimiters(rate.Every(window/time.Duration(requests)), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.get(clientip.FromRequest(r, trustProxy)).Allow() {
				metrics.RateLimited.WithLabelValues("global").Inc()
				tooManyRequests(w, "Too many requests. Please slow down.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

const (
	loginRateLimitEvery = 5 * time.Second
	loginRateLimitBurst = 3
)

// LoginRateLimit applies a stricter limit to paths under prefix only.
func LoginRateLimit(prefix string, trustProxy bool) func(http.Handler) http.Handler {
	limiters := newIPLimiters(rate.Every(loginRateLimitEvery), loginRateLimitBurst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
			if !limiters.get(clientip.FromRequest(r, trustProxy)).Allow() {
				metrics.RateLimited.WithLabelValues("login").Inc()
				tooManyRequests(w, "Too many login attempts. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ProductionSecurity returns the production-only middlewares:
// SecurityHeaders → GlobalRateLimit → LoginRateLimit.
func ProductionSecurity(cfg *config.Config, loginPrefix string) []func(http.Handler) http.Handler {
	mws := []func(http.Handler) http.Handler{SecurityHeaders}
	if cfg.RateLimit.Disabled {
		return mws
	}
	return append(mws,
		GlobalRateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.Server.TrustProxy),
		LoginRateLimit(loginPrefix, cfg.Server.TrustProxy),
	)
}

func passthrough(next http.Handler) http.Handler { return next }
