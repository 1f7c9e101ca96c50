// Package api implements the star system catalog REST API using chi.
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// AdminKeyHeader carries the admin secret as an alternative to Bearer auth.
const AdminKeyHeader = "X-Admin-Key"

// adminKeyField is the form field accepted from HTML forms.
const adminKeyField = "admin_key"

// AdminMiddleware returns middleware that checks the shared admin secret.
// If enabled is false, all requests pass through (disabled mode).
// If enabled is true, the secret must arrive as "Authorization: Bearer <secret>",
// in the X-Admin-Key header, or in the admin_key form field.
func AdminMiddleware(enabled bool, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			if !secretMatches(adminKey(r), secret) {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func adminKey(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if key := r.Header.Get(AdminKeyHeader); key != "" {
		return key
	}
	// Only urlencoded bodies are parsed here; CSV uploads stay unread.
	// Query parameters are never read; request URIs are logged.
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		return r.PostFormValue(adminKeyField)
	}
	return ""
}

func secretMatches(got, want string) bool {
	if got == "" || want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// HTTPObserver receives one measurement per served request.
type HTTPObserver interface {
	ObserveHTTP(route string, code int, elapsed time.Duration)
}

// MetricsMiddleware reports every request under its chi route pattern so
// that path parameters do not explode label cardinality.
func MetricsMiddleware(obs HTTPObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			obs.ObserveHTTP(route, status, time.Since(start))
		})
	}
}
