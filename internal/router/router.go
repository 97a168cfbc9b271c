package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	// swaggerFiles "github.com/swaggo/files"
	// ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"form-builder-api/internal/cache"
	"form-builder-api/internal/handler"
	"form-builder-api/internal/metrics"
	"form-builder-api/internal/middleware"
	"form-builder-api/internal/repository"
	"form-builder-api/internal/service"
)

// Config holds router configuration
type Config struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	JWTSecret      string
	JWTExpiresIn   time.Duration
	BasePath       string
	AllowedOrigins []string
	CacheTTL       time.Duration
}

// Setup sets up the router with all routes
func Setup(cfg Config) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Prometheus metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check routes
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy", "service": "form-builder-api"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if cfg.DB == nil {
			c.JSON(503, gin.H{"status": "not ready", "service": "form-builder-api"})
			return
		}
		sqlDB, err := cfg.DB.DB()
		if err != nil {
			c.JSON(503, gin.H{"status": "not ready", "service": "form-builder-api"})
			return
		}
		if err := sqlDB.Ping(); err != nil {
			c.JSON(503, gin.H{"status": "not ready", "service": "form-builder-api"})
			return
		}
		c.JSON(200, gin.H{"status": "ready", "service": "form-builder-api"})
	})

	// Swagger documentation (disabled for faster builds)
	// r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Initialize repositories
	userRepo := repository.NewUserRepository(cfg.DB)
	formRepo := repository.NewFormRepository(cfg.DB)
	responseRepo := repository.NewResponseRepository(cfg.DB)

	// Public form cache is optional; without Redis reads go to the database
	var formCache service.PublicFormCache
	if cfg.Redis != nil {
		formCache = cache.NewFormCache(cfg.Redis, cfg.CacheTTL, cfg.Metrics, cfg.Logger)
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiresIn, cfg.Logger)
	formService := service.NewFormService(formRepo, responseRepo, formCache, cfg.Metrics, cfg.Logger)
	submissionService := service.NewSubmissionService(formRepo, responseRepo, cfg.Metrics, cfg.Logger)
	analyticsService := service.NewAnalyticsService(formRepo, responseRepo, cfg.Logger)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	formHandler := handler.NewFormHandler(formService)
	responseHandler := handler.NewResponseHandler(analyticsService)
	publicHandler := handler.NewPublicHandler(formService, submissionService)

	// API routes group
	api := r.Group(cfg.BasePath)

	authMiddleware := middleware.Auth(cfg.JWTSecret)

	// ============================================================
	// Auth routes
	// ============================================================
	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", authMiddleware, authHandler.GetProfile)
		auth.PUT("/me", authMiddleware, authHandler.UpdateProfile)
		auth.PUT("/me/password", authMiddleware, authHandler.ChangePassword)
	}

	// ============================================================
	// Form management routes
	// ============================================================
	forms := api.Group("/forms")
	forms.Use(authMiddleware)
	{
		forms.POST("", formHandler.CreateForm)
		forms.GET("", formHandler.ListForms)
		forms.GET("/:formId", formHandler.GetForm)
		forms.PUT("/:formId", formHandler.UpdateForm)
		forms.DELETE("/:formId", formHandler.DeleteForm)
		forms.POST("/:formId/duplicate", formHandler.DuplicateForm)

		// Responses and analytics
		forms.GET("/:formId/responses", responseHandler.GetResponses)
		forms.GET("/:formId/statistics", responseHandler.GetStatistics)
		forms.POST("/:formId/export", responseHandler.ExportResponses)
	}

	// ============================================================
	// Public routes (form fill page and submission)
	// ============================================================
	public := api.Group("/public/forms")
	public.Use(middleware.OptionalAuth(cfg.JWTSecret))
	{
		public.GET("/:formId", publicHandler.GetPublicForm)
		public.POST("/:formId/responses", publicHandler.SubmitResponse)
	}

	return r
}
