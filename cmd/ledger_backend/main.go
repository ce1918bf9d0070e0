package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/services"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/handlers"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/middleware"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/payments"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/platform/config"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/platform/persistence"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/platform/worker"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/repositories/database/pgsql"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Running database migrations...")
	if err := persistence.RunMigrations(cfg.DatabaseURL, "./migrations"); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Database migrations applied.")

	dbPool, err := persistence.NewPostgresPool(ctx, logger, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()

	dispatcher, err := worker.NewDispatcher(cfg.WorkerPoolSize, logger)
	if err != nil {
		logger.Error("Failed to initialize dispatcher", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dispatcher.Shutdown()

	repos := pgsql.NewRepositoryProvider(dbPool)
	container := services.NewServiceContainer(cfg, repos, dispatcher)
	breaker := payments.NewCircuitBreaker(cfg.CircuitFailureThreshold, cfg.CircuitCooldown)

	// Periodic sweep of expired idempotency keys.
	go func() {
		ticker := time.NewTicker(cfg.IdempotencySweepTick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := container.Idempotency.CleanupExpiredKeys(ctx); err != nil {
					logger.Error("Idempotency key sweep failed", slog.String("error", err.Error()))
				}
			}
		}
	}()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())
	r.Use(middleware.PerformerMiddleware())

	if rate, err := limiter.NewRateFromFormatted(cfg.RateLimit); err == nil {
		ipLimiter := limiter.New(memory.NewStore(), rate)
		r.Use(middleware.RateLimit(ipLimiter))
	} else {
		logger.Warn("Invalid RATE_LIMIT format, rate limiting disabled", slog.String("value", cfg.RateLimit))
	}

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, container, breaker)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
