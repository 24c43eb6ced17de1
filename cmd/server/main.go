// Package main is the entrypoint for the portfolio API gateway server.
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
	"github.com/portfolio-hub/gateway/internal/api"
	"github.com/portfolio-hub/gateway/internal/api/handler"
	mw "github.com/portfolio-hub/gateway/internal/api/middleware"
	"github.com/portfolio-hub/gateway/internal/async"
	"github.com/portfolio-hub/gateway/internal/cache"
	"github.com/portfolio-hub/gateway/internal/calllog"
	"github.com/portfolio-hub/gateway/internal/config"
	"github.com/portfolio-hub/gateway/internal/metrics"
	"github.com/portfolio-hub/gateway/internal/store"
	"github.com/portfolio-hub/gateway/internal/telemetry"
	"github.com/portfolio-hub/gateway/internal/token"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, fail fast on invalid values
	if err := loadDotEnv(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "env", cfg.Server.Env, "rate_limit", cfg.RateLimitEnabled())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Tracing
	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry.ServiceName)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			slog.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	// 3. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 4. Run migrations
	if cfg.Database.RunMigrations {
		if err := store.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsDir); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		slog.Info("database migrations applied")
	}

	// 5. Optional Redis for rate limiting
	var redisCache *cache.RedisCache
	if cfg.RateLimitEnabled() {
		redisCache, err = cache.NewRedisCache(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("create redis cache: %w", err)
		}
		defer redisCache.Close()

		if err := redisCache.Ping(ctx); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		slog.Info("redis connected")
	}

	// 6. Build router
	pgStore := store.NewPostgresStore(pool)
	runner := async.NewRunner(cfg.Server.BackgroundTaskTimeout)
	router := newRouter(cfg, pgStore, redisCache, runner, metrics.New())

	// 7. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown: stop accepting requests, then flush background writes
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := runner.Wait(shutdownCtx); err != nil {
		slog.Warn("background writes still pending at shutdown", "error", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// newRouter wires the gateway components. A nil cache disables rate limiting.
func newRouter(cfg *config.Config, s store.Store, c *cache.RedisCache, runner *async.Runner, m *metrics.Metrics) http.Handler {
	health := map[string]handler.Pinger{"database": s}

	deps := api.Dependencies{
		Auth:          mw.NewAuth(token.NewValidator(s, runner), m),
		CallRecorder:  mw.NewCallRecorder(calllog.NewLogger(s, runner)),
		Metrics:       m,
		Tracing:       telemetry.HTTPMiddleware(cfg.Telemetry.ServiceName),
		Projects:      s,
		RoutePrefixes: cfg.Server.RoutePrefixes,
	}
	if c != nil {
		health["cache"] = c
		deps.RateLimit = mw.NewRateLimit(c, cfg.Server.RateLimitPerMinute, m)
	}
	deps.HealthHandler = handler.NewHealthHandler(health)

	return api.NewRouter(deps)
}

// loadDotEnv loads path into the environment when it exists. Variables
// already set are left untouched.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}
