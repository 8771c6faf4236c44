package main

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

	"github.com/joho/godotenv"

	"hanzify/internal/backend"
	"hanzify/internal/config"
	"hanzify/internal/contextbuf"
	"hanzify/internal/conversion"
	"hanzify/internal/history"
	"hanzify/internal/httpapi"
	"hanzify/internal/observability"
)

func main() {
	// A missing .env is fine; the process environment still applies.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	metrics := observability.NewMetrics()

	gen := backend.New(cfg, backend.NewHTTPClient(cfg.RequestTimeout), backend.Hooks{
		Upstream: metrics.ObserveUpstream,
		Breaker:  metrics.ObserveBreaker,
	})

	opts := []conversion.Option{
		conversion.WithLogger(logger),
		conversion.WithObserver(metrics),
		conversion.WithGenerationConfig(backend.GenerationConfig(cfg)),
		conversion.WithTimeout(cfg.GenerationTimeout),
	}

	deps := httpapi.Dependencies{
		Readiness:      gen,
		Metrics:        metrics,
		MetricsHandler: metrics.Handler(),
	}

	if cfg.HistoryDBPath != "" {
		store, err := history.Open(cfg.HistoryDBPath)
		if err != nil {
			logger.Error("open history store", "path", cfg.HistoryDBPath, "error", err)
			os.Exit(1)
		}
		defer func() { _ = store.Close() }()
		opts = append(opts, conversion.WithRecorder(store))
		deps.History = store
	}

	svc := conversion.New(gen, contextbuf.New(cfg.ContextLimit), opts...)
	deps.Converter = svc

	handler := httpapi.NewServer(cfg, logger, deps)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       35 * time.Second,
		// Convert may wait for an in-flight conversion and then run its own.
		WriteTimeout: 2*cfg.GenerationTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		started := time.Now()
		if err := gen.Init(ctx); err != nil {
			logger.Warn("model warm-up failed; will retry on first request", "provider", cfg.Provider, "model", cfg.Model, "error", err)
			return
		}
		logger.Info("model loaded", "provider", cfg.Provider, "model", cfg.Model, "duration_ms", time.Since(started).Milliseconds())
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.ListenAddr, "provider", cfg.Provider, "model", cfg.Model)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("server exited", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func newLogger(level string) *slog.Logger {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn", "warning":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
}
