package router

import (
	"net/http"
	"time"

	"github.com/openauthstack/user-auth-service/internal/config"
	"github.com/openauthstack/user-auth-service/internal/database"
	"github.com/openauthstack/user-auth-service/internal/handlers"
	"github.com/openauthstack/user-auth-service/internal/middleware"
	"github.com/openauthstack/user-auth-service/internal/services/auth"
	"github.com/openauthstack/user-auth-service/internal/services/excel"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// SetupRouter configures the gin engine with the authentication routes
func SetupRouter(db *gorm.DB, settings *config.Settings, authService *auth.AuthService, excelService *excel.Service) *gin.Engine {
	if !settings.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	// CORS wide open, as the original service shipped it
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	bearerToken := middleware.NewBearerTokenMiddleware(authService)

	authHandler := handlers.NewAuthHandler(authService, settings)
	adminHandler := handlers.NewAdminHandler(authService, excelService, settings)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": settings.AppName,
			"version": "1.0.0",
			"status":  "running",
			"docs":    "/swagger/index.html",
		})
	})

	r.GET("/health", func(c *gin.Context) {
		if err := database.Ping(db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "connected"})
	})

	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.LoginForm)
		authRoutes.POST("/login/json", authHandler.LoginJSON)
		authRoutes.POST("/refresh", authHandler.Refresh)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	protected := r.Group("")
	protected.Use(bearerToken.RequireAuth())
	{
		authProtected := protected.Group("/auth")
		{
			authProtected.POST("/logout-all", authHandler.LogoutAll)
			authProtected.GET("/me", authHandler.Me)
			authProtected.PUT("/change-password", authHandler.ChangePassword)
			authProtected.DELETE("/delete-account", authHandler.DeleteAccount)
		}

		admin := protected.Group("/admin")
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/users/export", adminHandler.ExportUsers)
			admin.PUT("/users/:id/active", adminHandler.SetUserActive)
		}
	}

	return r
}
