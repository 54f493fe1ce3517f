package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/AnshRaj112/lighttribe-backend/internal/config"
	"github.com/AnshRaj112/lighttribe-backend/internal/database"
	"github.com/AnshRaj112/lighttribe-backend/internal/handlers"
	"github.com/AnshRaj112/lighttribe-backend/internal/metrics"
	"github.com/AnshRaj112/lighttribe-backend/internal/middleware"
	"github.com/AnshRaj112/lighttribe-backend/internal/services"
)

// APIPrefix is the mount point of the versioned API.
const APIPrefix = "/api/v1"

// NewRouter builds the HTTP handler. rdb may be nil.
func NewRouter(cfg *config.Config, store *database.Store, svc *services.Services, rdb *redis.Client) http.Handler {
	h := handlers.New(svc, cfg)

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	// Production: SecurityHeaders → GlobalRateLimit → LoginRateLimit.
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg, APIPrefix+"/auth/") {
			r.Use(mw)
		}
	}

	r.Get("/health", handlers.Health(store, rdb))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	writeLimit := limitWrites(cfg)

	r.Route(APIPrefix, func(r chi.Router) {
		r.With(writeLimit).Post("/users", h.Register)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/basic", h.BasicAuth)
			r.Post("/anonymous", h.AnonymousAuth)
			r.Post("/facebook", h.FacebookAuth)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(svc.Tokens))
			if !cfg.RateLimit.Disabled {
				r.Use(middleware.RedisRateLimit(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.Server.TrustProxy))
			}

			r.Route("/users/{userId}", func(r chi.Router) {
				r.Get("/", h.GetSettings)
				r.Post("/", h.UpdateSettings)
				r.Post("/devices", h.AddDevice)
				r.Delete("/devices", h.RemoveDevice)
				r.Get("/follows", h.ListFollows)
				r.Post("/follows", h.Follow)
				r.Delete("/follows/{targetId}", h.Unfollow)
				r.Get("/posts", h.ListUserPosts)
				r.Get("/reviews", h.ListUserReviews)
			})

			r.Route("/posts", func(r chi.Router) {
				r.With(writeLimit).Post("/", h.CreatePost)
				r.Get("/", h.SearchPosts)
				r.Get("/{postId}", h.GetPost)
				r.With(writeLimit).Post("/{postId}/comments", h.CreateComment)
				r.Get("/{postId}/comments", h.ListComments)
				r.Get("/{postId}/comments/live", h.LiveComments)
			})

			r.With(writeLimit).Post("/images", h.UploadImage)
			r.With(writeLimit).Post("/reviews", h.CreateReview)
			r.Get("/reviews/{reviewId}", h.GetReview)
		})
	})

	return r
}

// limitWrites caps content-creating requests per client IP.
func limitWrites(cfg *config.Config) func(http.Handler) http.Handler {
	if cfg.RateLimit.Disabled || cfg.RateLimit.WriteRequests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	keyFunc := httprate.KeyByIP
	if cfg.Server.TrustProxy {
		keyFunc = httprate.KeyByRealIP
	}
	return httprate.Limit(cfg.RateLimit.WriteRequests, time.Minute,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.RateLimited.WithLabelValues("write").Inc()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"success":false,"message":"Too many write requests. Please slow down.","error":{"code":"RATE_LIMITED"}}`))
		}),
	)
}
