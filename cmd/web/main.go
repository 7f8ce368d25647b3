package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"autosales-dashboard/internal/config"
	"autosales-dashboard/internal/errors"
	"autosales-dashboard/internal/middleware"
	"autosales-dashboard/internal/observability"
	"autosales-dashboard/internal/render"
	"autosales-dashboard/internal/server"
	"autosales-dashboard/internal/services"
	"autosales-dashboard/internal/ui/templates"
)

const (
	renderTimeout     = 10 * time.Second
	limiterSweepEvery = time.Minute
)

// dashboardHandler serves the page shell. The year options come from the
// loaded table and never change afterwards.
func dashboardHandler(analytics *services.Analytics, logger *slog.Logger) http.HandlerFunc {
	years := analytics.Years()

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		var buf bytes.Buffer
		if err := templates.Dashboard(years).Render(ctx, &buf); err != nil {
			errors.WriteError(w, logger, errors.InternalWrap(err, "render dashboard"), observability.GetRequestID(r.Context()))
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		buf.WriteTo(w)
	}
}

func newHandler(cfg *config.Config, analytics *services.Analytics, limiter *middleware.RateLimiter, logger *slog.Logger) http.Handler {
	renderer := render.NewRenderer(cfg.Charts, logger)
	srv := server.NewServer(analytics, renderer, logger, &server.TemplateHandlers{
		Dashboard: dashboardHandler(analytics, logger),
	})

	chain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(limiter, logger),
	)
	return chain(srv)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"addr", cfg.Address(),
		"data_source", cfg.Data.Source,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	analytics := services.NewAnalytics()
	if err := analytics.Load(ctx, cfg.Data); err != nil {
		logger.Error("failed to load dataset", "source", cfg.Data.Source, "error", err)
		os.Exit(1)
	}

	limiter := middleware.NewRateLimiter(cfg.Security)
	go limiter.Run(ctx, limiterSweepEvery)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, analytics, limiter, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)
	gracefulServer.RegisterShutdownHook("rate-limiter", func(context.Context) error {
		cancel()
		return nil
	})

	if err := gracefulServer.ListenAndServe(ctx); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
