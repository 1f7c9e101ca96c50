package api

import (
	"context"
	"log/slog"
	"net/http"
)

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Counter reports the catalog size.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Health serves the liveness and readiness probes.
type Health struct {
	db      Pinger
	catalog Counter
}

// NewHealth creates probe handlers.
func NewHealth(db Pinger, catalog Counter) *Health {
	return &Health{db: db, catalog: catalog}
}

// Live handles GET /health/live.
func (h *Health) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready handles GET /health/ready.
func (h *Health) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		slog.Warn("readiness: database ping failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Database: "disconnected"})
		return
	}
	n, err := h.catalog.Count(r.Context())
	if err != nil {
		slog.Warn("readiness: count failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Database: "error"})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Database: "connected", SystemsCount: &n})
}
