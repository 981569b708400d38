// @title           Collab Board API
// @version         1.0
// @description     공유 칸반 보드 API: 보드, 컬럼, 카드, 공유, 라벨, 실시간 변경 알림
// @termsOfService  http://swagger.io/terms/

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /api/boards-service

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

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
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	_ "collab-board/docs" // Swagger docs import

	"collab-board/internal/client"
	"collab-board/internal/config"
	"collab-board/internal/database"
	"collab-board/internal/job"
	"collab-board/internal/lock"
	"collab-board/internal/metrics"
	"collab-board/internal/realtime"
	"collab-board/internal/repository"
	"collab-board/internal/router"
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

	logger.Info("Starting Collab Board Service",
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("base_path", cfg.Server.BasePath),
		zap.String("db_driver", cfg.Database.Driver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize metrics
	m := metrics.NewWithLogger(logger)
	logger.Info("Metrics initialized")

	// Initialize database
	db, err := connectDatabase(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("Database unavailable", zap.Error(err))
	}
	if err := database.AutoMigrateWithRetry(db, logger, 3); err != nil {
		logger.Warn("Failed to run database migrations", zap.Error(err))
	}
	if err := database.RegisterMetricsCallbacks(db, m); err != nil {
		logger.Warn("Failed to register database metrics callbacks", zap.Error(err))
	}
	statsDone := database.StartDBStatsCollector(db, m, 15*time.Second)
	defer close(statsDone)

	collector := metrics.NewBusinessMetricsCollector(db, m, logger, 30*time.Second)
	collector.Start()
	defer collector.Stop()

	// Redis backs cross-replica locks and event fan-out; without it both stay
	// in process.
	redisClient, err := database.NewRedis(cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-process coordination", zap.Error(err))
		redisClient = nil
	}

	hub := realtime.NewHub(m, logger)
	var locker lock.Locker
	var publisher realtime.Publisher
	if redisClient != nil {
		defer redisClient.Close()
		locker = lock.NewRedisLocker(redisClient, lock.RedisOptions{}, m.IncrementLockContention, logger)
		broker := realtime.NewRedisBroker(redisClient, cfg.Redis.EventChannel, hub, m, logger)
		go func() {
			if err := broker.Run(ctx, nil); err != nil {
				logger.Error("Board event subscription stopped", zap.Error(err))
			}
		}()
		publisher = broker
	} else {
		locker = lock.NewLocalLocker(3*time.Second, m.IncrementLockContention)
		publisher = realtime.NewLocalBroker(hub, m)
	}

	// Setup router with all dependencies
	r := router.Setup(router.Config{
		DB:             db,
		Redis:          redisClient,
		Logger:         logger,
		JWTSecret:      cfg.JWT.Secret,
		BasePath:       cfg.Server.BasePath,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Metrics:        m,
		Locker:         locker,
		Hub:            hub,
		Publisher:      publisher,
	})

	// Archive of purged boards
	if scheduler := startArchiveJob(ctx, cfg, db, m, logger); scheduler != nil {
		defer func() { <-scheduler.Stop().Done() }()
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Collab Board Service started successfully",
			zap.String("address", srv.Addr),
			zap.String("swagger", fmt.Sprintf("http://localhost:%s%s/swagger/index.html", cfg.Server.Port, cfg.Server.BasePath)),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// connectDatabase connects once and, when that fails, keeps retrying in the
// background until a connection is up or ctx is cancelled.
func connectDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	dbConfig := database.Config{
		Driver:          cfg.Driver,
		DSN:             cfg.GetDSN(),
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}

	db, err := database.New(dbConfig)
	if err == nil {
		logger.Info("Database connected successfully")
		return db, nil
	}

	logger.Warn("Failed to connect to database on startup, will retry in background",
		zap.Error(err))
	connected := make(chan *gorm.DB, 1)
	database.NewAsync(dbConfig, 5*time.Second, logger, func(db *gorm.DB) {
		connected <- db
	})

	select {
	case db := <-connected:
		return db, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// startArchiveJob schedules the purge of deleted boards. Snapshots go to S3
// only when it is configured.
func startArchiveJob(ctx context.Context, cfg *config.Config, db *gorm.DB, m *metrics.Metrics, logger *zap.Logger) *cron.Cron {
	if !cfg.Archive.Enabled {
		logger.Info("Board archive job disabled")
		return nil
	}

	var archive client.ArchiveStore
	if cfg.S3.Bucket != "" && cfg.S3.Region != "" {
		s3Archive, err := client.NewS3Archive(ctx, &cfg.S3)
		if err != nil {
			logger.Warn("Failed to initialize S3 archive, boards will be purged without snapshots", zap.Error(err))
		} else {
			archive = s3Archive
			logger.Info("S3 archive initialized",
				zap.String("bucket", cfg.S3.Bucket),
				zap.String("region", cfg.S3.Region),
			)
		}
	} else {
		logger.Warn("S3 configuration incomplete, boards will be purged without snapshots")
	}

	archiveJob := job.NewArchiveJob(repository.NewBoardRepository(db), archive, cfg.Archive, m, logger)
	scheduler, err := job.Schedule(cfg.Archive.Schedule, archiveJob, logger)
	if err != nil {
		logger.Warn("Board archive job not scheduled", zap.Error(err))
		return nil
	}
	scheduler.Start()
	return scheduler
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
