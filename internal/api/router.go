package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/starsys/internal/catalog"
)

// RouterOption configures NewRouter.
type RouterOption func(*routerConfig)

type routerConfig struct {
	authEnabled bool
	adminSecret string
	events      http.Handler
	metrics     HTTPObserver
	corsOrigins []string
	cors        bool
	limiter     *RateLimiter
}

// WithAdminAuth protects the /admin routes with the shared secret.
func WithAdminAuth(enabled bool, secret string) RouterOption {
	return func(c *routerConfig) {
		c.authEnabled = enabled
		c.adminSecret = secret
	}
}

// WithEvents mounts h at GET /events.
func WithEvents(h http.Handler) RouterOption {
	return func(c *routerConfig) { c.events = h }
}

// WithMetrics records every request into obs.
func WithMetrics(obs HTTPObserver) RouterOption {
	return func(c *routerConfig) { c.metrics = obs }
}

// WithCORS enables CORS for origins (all origins when empty).
func WithCORS(origins []string) RouterOption {
	return func(c *routerConfig) {
		c.cors = true
		c.corsOrigins = origins
	}
}

// WithRateLimiter applies rl to every route.
func WithRateLimiter(rl *RateLimiter) RouterOption {
	return func(c *routerConfig) { c.limiter = rl }
}

// NewRouter creates a chi router with all API routes mounted. Read routes are
// public; /admin routes require the admin secret when auth is enabled.
func NewRouter(svc *catalog.Service, opts ...RouterOption) chi.Router {
	var cfg routerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	h := NewHandler(svc)

	r := chi.NewRouter()
	if cfg.metrics != nil {
		r.Use(MetricsMiddleware(cfg.metrics))
	}
	if cfg.cors {
		r.Use(NewCORS(cfg.corsOrigins))
	}
	if cfg.limiter != nil {
		r.Use(cfg.limiter.Middleware)
	}

	// Catalog reads.
	r.Get("/systems", h.ListSystems)
	r.Get("/systems/{name}", h.GetSystem)
	r.Get("/stats", h.Stats)
	r.Get("/planets", h.Planets)
	r.Get("/sync/status", h.SyncStatus)
	r.Get("/export", h.Export)

	// Administration.
	r.Route("/admin", func(r chi.Router) {
		r.Use(AdminMiddleware(cfg.authEnabled, cfg.adminSecret))
		r.Post("/sync", h.StartSync)
		r.Post("/import", h.Import)
		r.Delete("/systems", h.Purge)
	})

	if cfg.events != nil {
		r.Get("/events", cfg.events.ServeHTTP)
	}

	return r
}
