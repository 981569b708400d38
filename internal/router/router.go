package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"collab-board/internal/handler"
	"collab-board/internal/lock"
	"collab-board/internal/metrics"
	"collab-board/internal/middleware"
	"collab-board/internal/realtime"
	"collab-board/internal/repository"
	"collab-board/internal/service"
)

// Config holds the dependencies of the HTTP surface. Redis, Validator,
// Locker, Hub and Publisher are optional; in-process defaults are used when
// they are nil.
type Config struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *zap.Logger
	JWTSecret      string
	Validator      middleware.TokenValidator
	BasePath       string
	AllowedOrigins []string
	Metrics        *metrics.Metrics
	Locker         lock.Locker
	Hub            *realtime.Hub
	Publisher      realtime.Publisher
}

// Setup wires repositories, services and handlers and returns the engine
func Setup(cfg Config) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(cfg.Metrics))

	hub := cfg.Hub
	if hub == nil {
		hub = realtime.NewHub(cfg.Metrics, cfg.Logger)
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = realtime.NewLocalBroker(hub, cfg.Metrics)
	}
	locker := cfg.Locker
	if locker == nil {
		locker = lock.NewLocalLocker(3*time.Second, cfg.Metrics.IncrementLockContention)
	}
	validator := cfg.Validator
	if validator == nil {
		validator = middleware.NewJWTValidator(cfg.JWTSecret)
	}

	// Initialize repositories
	boardRepo := repository.NewBoardRepository(cfg.DB)
	labelRepo := repository.NewLabelRepository(cfg.DB)
	userRepo := repository.NewUserRepository(cfg.DB)

	// Initialize services
	boardService := service.NewBoardService(boardRepo, locker, publisher, cfg.Metrics, cfg.Logger)
	shareService := service.NewShareService(boardRepo, locker, publisher, cfg.Metrics, cfg.Logger)
	labelService := service.NewLabelService(labelRepo, boardRepo, locker, publisher, cfg.Logger)
	userService := service.NewUserService(userRepo, cfg.Logger)

	// Initialize handlers
	boardHandler := handler.NewBoardHandler(boardService, cfg.Logger)
	shareHandler := handler.NewShareHandler(shareService, cfg.Logger)
	labelHandler := handler.NewLabelHandler(labelService, cfg.Logger)
	userHandler := handler.NewUserHandler(userService, cfg.Logger)
	wsHandler := handler.NewWSHandler(boardService, hub, cfg.Logger)
	healthHandler := handler.NewHealthHandler(cfg.DB, cfg.Redis)

	// Ops endpoints (no auth)
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group(cfg.BasePath)
	{
		if cfg.BasePath != "" && cfg.BasePath != "/" {
			api.GET("/health", healthHandler.Health)
			api.GET("/ready", healthHandler.Ready)
			api.GET("/metrics", gin.WrapH(promhttp.Handler()))
		}
		api.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(validator))
		{
			boards := authenticated.Group("/boards")
			{
				boards.GET("", boardHandler.ListBoards)
				boards.POST("", boardHandler.CreateBoard)
				boards.GET("/:boardId", boardHandler.GetBoard)
				boards.PATCH("/:boardId", boardHandler.UpdateBoard)
				boards.DELETE("/:boardId", boardHandler.DeleteBoard)
				boards.POST("/:boardId/shares", shareHandler.Share)
				boards.DELETE("/:boardId/shares", shareHandler.Unshare)
				boards.GET("/:boardId/ws", wsHandler.HandleWebSocket)
			}

			labels := authenticated.Group("/labels")
			{
				labels.GET("", labelHandler.ListLabels)
				labels.POST("", labelHandler.CreateLabel)
				labels.PUT("/:labelId", labelHandler.UpdateLabel)
				labels.DELETE("/:labelId", labelHandler.DeleteLabel)
			}

			users := authenticated.Group("/users")
			{
				users.GET("", userHandler.ListUsers)
				users.PUT("/me", userHandler.UpsertProfile)
			}
		}
	}

	return r
}
