package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"identity-service/internal/config"
	"identity-service/internal/delivery/http/handler"
	"identity-service/internal/infrastructure/database/postgres"
	"identity-service/internal/logger"
	"identity-service/internal/messenger"
	"identity-service/internal/middleware"
	"identity-service/internal/token"
	"identity-service/internal/usecase/auth"
	"identity-service/internal/usecase/password"
)

func SetupRoutes(cfg *config.Config, db *postgres.DB, blacklist *postgres.BlacklistRepository, sender messenger.Sender) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware order: request ID, logging, security headers, CORS, request size limit, general rate limit
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	userRepository := postgres.NewUserRepository(db)
	resetCodeRepository := postgres.NewResetCodeRepository(db)

	tokenEngine := token.NewEngine(cfg, blacklist)

	authService := auth.NewService(userRepository, tokenEngine)
	authHandler := handler.NewAuthHandler(authService)

	passwordService := password.NewService(userRepository, resetCodeRepository, tokenEngine, sender, cfg)
	passwordHandler := handler.NewPasswordHandler(passwordService)

	authGroup := router.Group("/auth")
	{
		authHandler.RegisterRoutes(authGroup)
		passwordHandler.RegisterRoutes(authGroup)

		protected := authGroup.Group("")
		protected.Use(middleware.AuthMiddleware(tokenEngine, authService))
		{
			authHandler.RegisterProtectedRoutes(protected)
		}
	}

	logger.Info("All routes initialized")
	return router
}
