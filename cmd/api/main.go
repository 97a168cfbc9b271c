package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"form-builder-api/internal/config"
	"form-builder-api/internal/database"
	"form-builder-api/internal/job"
	"form-builder-api/internal/metrics"
	"form-builder-api/internal/repository"
	"form-builder-api/internal/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logger.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Set Gin mode
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting Form Builder API",
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("base_path", cfg.Server.BasePath),
	)

	// Initialize metrics
	m := metrics.NewWithLogger(logger)

	// Initialize database; a failed first connection retries in background so
	// the pod stays alive behind its readiness probe
	dbConfig := database.Config{
		DSN:             cfg.Database.GetDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	onConnect := func(db *gorm.DB) {
		if err := database.AutoMigrate(db); err != nil {
			logger.Warn("Failed to run database migrations", zap.Error(err))
		} else {
			logger.Info("Database migrations completed")
		}
		database.RegisterMetricsCallbacks(db, m)
	}

	db, err := database.New(dbConfig)
	if err != nil {
		logger.Warn("Failed to connect to database on startup, will retry in background",
			zap.Error(err))
		database.NewAsync(dbConfig, 5*time.Second, onConnect)
	} else {
		logger.Info("Database connected successfully")
		onConnect(db)
	}

	var statsDone chan struct{}
	if db != nil {
		statsDone = database.StartDBStatsCollector(db, m)
	}

	// Initialize Redis; the public form cache degrades to database reads
	// without it
	var redisClient *redis.Client
	if cfg.Redis.URL != "" || cfg.Redis.Addr != "" {
		redisClient, err = database.NewRedis(cfg.Redis, logger)
		if err != nil {
			logger.Warn("Failed to connect to Redis, public form cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			logger.Info("Redis connected successfully")
		}
	}

	// Business metrics collector
	var collector *metrics.BusinessMetricsCollector
	if db != nil {
		collector = metrics.NewBusinessMetricsCollector(db, m, logger)
		collector.Start()
	}

	// Scheduled purge of soft-deleted forms past retention
	scheduler := cron.New()
	if db != nil {
		purgeJob := job.NewPurgeJob(repository.NewFormRepository(db), cfg.Jobs.DeletedFormMaxAge, logger)
		if _, err := scheduler.AddJob(cfg.Jobs.PurgeSchedule, purgeJob); err != nil {
			logger.Warn("Failed to schedule purge job", zap.Error(err))
		} else {
			logger.Info("Purge job scheduled",
				zap.String("schedule", cfg.Jobs.PurgeSchedule),
				zap.Duration("max_age", cfg.Jobs.DeletedFormMaxAge),
			)
		}
	}
	scheduler.Start()

	// Setup router with all dependencies
	r := router.Setup(router.Config{
		DB:             db,
		Redis:          redisClient,
		Logger:         logger,
		Metrics:        m,
		JWTSecret:      cfg.JWT.Secret,
		JWTExpiresIn:   cfg.JWT.ExpiresIn,
		BasePath:       cfg.Server.BasePath,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		CacheTTL:       cfg.Redis.CacheTTL,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Form Builder API started successfully",
			zap.String("address", srv.Addr),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	scheduler.Stop()
	if collector != nil {
		collector.Stop()
	}
	if statsDone != nil {
		close(statsDone)
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Warn("Failed to close Redis client", zap.Error(err))
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// initLogger initializes the zap logger with the specified level
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
