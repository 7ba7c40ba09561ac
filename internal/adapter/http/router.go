package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/amlsynth/internal/adapter/http/handler"
	"github.com/iho/amlsynth/internal/adapter/http/middleware"
	"github.com/iho/amlsynth/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	RunHandler       *handler.RunHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	RateLimiter      *middleware.RateLimiter
	MetricsHandler   http.Handler
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Metrics)

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.Logger).Wrap)
		}

		r.Route("/runs", func(r chi.Router) {
			create := http.Handler(http.HandlerFunc(cfg.RunHandler.Create))
			if cfg.RateLimiter != nil {
				create = cfg.RateLimiter.Limit(create)
			}
			r.Method(http.MethodPost, "/", create)

			r.Get("/{id}", cfg.RunHandler.Get)
			r.Get("/{id}/entries", cfg.RunHandler.ListEntries)
			r.Get("/{id}/accounts", cfg.RunHandler.ListAccounts)
		})
	})

	return r
}
