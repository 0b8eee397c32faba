package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/config"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/database"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/llm"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/logging"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/middleware"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/pipeline"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/router"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/server"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/service"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/store"
)

const (
	migrationsDir   = "migrations"
	shutdownTimeout = 10 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	gin.SetMode(config.GinMode())

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run history
	db, err := database.Open(cfg, logger)
	if err != nil {
		return err
	}
	if err := database.RunMigrations(ctx, db, migrationsDir, logger); err != nil {
		return err
	}

	// Per-user documents live in Redis when configured
	var (
		st          store.Gateway = store.NewMemoryStore()
		rateLimiter *middleware.RateLimiter
	)
	if cfg.RedisEnabled() {
		redisClient, err := database.NewRedisClient(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		st = store.NewRedisStore(redisClient, store.DefaultKeyPrefix, logger)
		if cfg.PipelineRateLimit > 0 {
			rateLimiter = middleware.NewPipelineRateLimiter(redisClient, cfg.PipelineRateLimit, logger)
		}
	} else {
		logger.Warn("redis not configured, kitchen data is kept in memory")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	generator, err := llm.New(ctx, cfg.Gemini, nil, logger)
	if err != nil {
		return err
	}
	if closer, ok := generator.(io.Closer); ok {
		defer closer.Close()
	}

	// Initialize services
	runs := service.NewRunRecorder(db, logger)
	opts := []pipeline.Option{
		pipeline.WithObserver(runs),
		pipeline.WithMetrics(pipeline.NewMetrics(registry)),
	}
	if generator != nil {
		opts = append(opts, pipeline.WithGenerator(generator))
	}
	if !cfg.Kestra.Configured() {
		logger.Warn("workflow engine not configured, only recipes are available")
	}
	pipelines := pipeline.NewClient(cfg.Kestra, logger, opts...)

	kitchenOpts := []service.KitchenOption{service.WithRunTracker(runs)}
	if cfg.FridgeImageBucket != "" {
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return err
		}
		kitchenOpts = append(kitchenOpts, service.WithImageUploader(service.NewS3ImageStore(s3cfg, logger)))
	}
	kitchen := service.NewKitchenService(st, pipelines, logger, kitchenOpts...)

	handler := router.SetupRouter(router.Deps{
		Config:      cfg,
		Kitchen:     kitchen,
		Runs:        runs,
		Auth:        service.NewAuthService(cfg.JWTSecret),
		Health:      func(ctx context.Context) error { return database.HealthCheck(ctx, db) },
		RateLimiter: rateLimiter,
		Metrics:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Logger:      logger,
	})

	srv := server.New(cfg, handler, logger)
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	closeDB(db, logger)
	logger.Info("server stopped")
	return nil
}

func closeDB(db *gorm.DB, logger *slog.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("failed to close database", "error", err)
	}
}
