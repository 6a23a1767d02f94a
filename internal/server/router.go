package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tsunderebot/covers/internal/auth"
	"github.com/tsunderebot/covers/internal/handler"
	"github.com/tsunderebot/covers/internal/metrics"
	"github.com/tsunderebot/covers/internal/middleware"
)

// RouterConfig carries everything the router mounts.
type RouterConfig struct {
	Logger   *slog.Logger
	Verifier auth.Verifier
	Metrics  metrics.Recorder

	IsDevelopment      bool
	CORSAllowedOrigins []string
	MaxRequestBodySize int64

	Grids          *handler.GridHandler
	Proxy          *handler.ProxyHandler
	Health         *handler.HealthHandler
	MetricsHandler *handler.MetricsHandler
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	h := handler.New()
	r := chi.NewRouter()

	origins := cfg.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         int((10 * time.Minute).Seconds()),
	}))
	if cfg.MaxRequestBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
	}

	security := middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Security(security))

		if cfg.Health != nil {
			r.Get("/healthz", cfg.Health.Healthz)
			r.Get("/readyz", cfg.Health.Readyz)
		}
		if cfg.MetricsHandler != nil {
			r.Get("/metrics", cfg.MetricsHandler.Metrics)
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Security(security))
			r.Use(middleware.Auth(middleware.AuthConfig{
				Logger:   cfg.Logger,
				Verifier: cfg.Verifier,
				Metrics:  cfg.Metrics,
			}))
			r.Post("/grids", cfg.Grids.Create)
			r.Get("/grids", cfg.Grids.List)
		})

		// Proxied images stay cacheable.
		r.With(middleware.MediaSecurity(security)).Get("/proxy", cfg.Proxy.Proxy)
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
