package api

import (
	"log/slog"
	"net/http"

	"github.com/rs/cors"
)

var corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}

// NewCORS returns CORS middleware for the given origins. With no origins
// every origin is allowed and credentials are not.
func NewCORS(origins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: corsMethods,
		AllowedHeaders: []string{"Content-Type", "Authorization", AdminKeyHeader},
	}
	if len(origins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	} else {
		opts.AllowCredentials = true
	}

	slog.Debug("cors configured",
		slog.Any("allowed_origins", opts.AllowedOrigins),
		slog.Bool("allow_credentials", opts.AllowCredentials))

	return cors.New(opts).Handler
}
