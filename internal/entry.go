// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/starsys/internal/api"
	"github.com/starford/starsys/internal/catalog"
	"github.com/starford/starsys/internal/inbox"
	"github.com/starford/starsys/internal/mcpserver"
	"github.com/starford/starsys/internal/metrics"
	"github.com/starford/starsys/internal/sse"
)

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("sqlite_driver", cfg.SQLite.Driver),
		slog.String("archive_url", cfg.Archive.URL),
		slog.Bool("inbox_enabled", cfg.Inbox.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))
	if cfg.Auth.UsesDefaultSecret() {
		logger.Warn("admin secret is the default; set STARADMIN before exposing the server")
	}

	m, err := metrics.New()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	cat, err := OpenCatalog(cfg, logger, catalog.WithEvents(broker), catalog.WithMetrics(m))
	if err != nil {
		return err
	}
	defer cat.Close()
	svc := cat.Service
	logger.Info("Database initialized", slog.String("path", cfg.SQLite.Path))

	if cfg.Sync.AutoSyncWhenEmpty {
		started, err := svc.SyncInBackgroundIfEmpty(ctx)
		switch {
		case err != nil:
			logger.Warn("startup sync not started", slog.String("error", err.Error()))
		case started:
			logger.Info("Database is empty, background sync started")
		}
	} else if n, err := svc.Count(ctx); err == nil {
		m.SetCatalogSize(n)
	}

	limiter := api.NewRateLimiter(api.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.Burst,
		Enabled:           cfg.RateLimit.Enabled,
		TrustProxy:        cfg.RateLimit.TrustProxy,
	})
	defer limiter.Close()

	apiRouter := api.NewRouter(svc,
		api.WithAdminAuth(cfg.Auth.AuthEnabled(), cfg.Auth.Token),
		api.WithEvents(broker),
		api.WithMetrics(m),
		api.WithCORS(cfg.CORS.AllowedOrigins),
		api.WithRateLimiter(limiter))
	health := api.NewHealth(cat.Store, svc)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", health.Live)
	r.Get("/health/ready", health.Ready)
	r.Handle("/metrics", m.Handler())

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Import CSV files dropped into the inbox.
	if cfg.Inbox.Enabled {
		fs, err := inbox.NewFS(cfg.Inbox.Path)
		if err != nil {
			return fmt.Errorf("init inbox: %w", err)
		}
		watcher := inbox.NewWatcher(fs, svc, inbox.WithWatcherLogger(logger))
		g.Go(func() error {
			if err := watcher.Watch(gCtx); err != nil {
				logger.Error("inbox watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	err = g.Wait()
	if svc.SyncStatus().Running {
		logger.Info("Waiting for background sync to finish")
	}
	if err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the inbox watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the catalog over MCP on stdin/stdout. Logs go to stderr
// because stdout carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	cat, err := OpenCatalog(cfg, logger)
	if err != nil {
		return err
	}
	defer cat.Close()

	if cfg.Sync.AutoSyncWhenEmpty {
		if _, err := cat.Service.SyncInBackgroundIfEmpty(ctx); err != nil {
			logger.Warn("startup sync not started", slog.String("error", err.Error()))
		}
	}

	logger.Info("MCP server starting", slog.String("version", app.version))
	return mcpserver.New(cat.Service, app.version).ServeStdio()
}
