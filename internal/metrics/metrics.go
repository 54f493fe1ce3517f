// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lighttribe_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lighttribe_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lighttribe_rate_limited_total",
			Help: "Requests rejected by a rate limiter",
		},
		[]string{"limiter"},
	)

	// Auth
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lighttribe_auth_attempts_total",
			Help: "Authentication attempts by method and outcome",
		},
		[]string{"method", "result"}, // basic|anonymous|facebook, success|failure
	)

	TokenCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lighttribe_token_cache_lookups_total",
			Help: "Session token cache lookups",
		},
		[]string{"result"}, // hit, miss
	)

	// Content
	PostsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lighttribe_posts_created_total",
			Help: "Posts created by type",
		},
		[]string{"post_type"},
	)

	CommentsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lighttribe_comments_created_total",
			Help: "Comments created",
		},
	)

	GeoSearchScanned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lighttribe_geo_search_scanned_posts",
			Help:    "Bounding-box candidates examined per geo search",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// Live comments
	LiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lighttribe_live_comment_connections",
			Help: "Open live comment websocket connections",
		},
	)

	// Circuit breakers
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lighttribe_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// RecordAPIRequest records one finished HTTP request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordAuth records an authentication attempt.
func RecordAuth(method string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	AuthAttempts.WithLabelValues(method, result).Inc()
}
