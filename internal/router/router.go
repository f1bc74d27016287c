// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/javajoker/ipo-portal-backend/internal/config"
	"github.com/javajoker/ipo-portal-backend/internal/handlers"
	"github.com/javajoker/ipo-portal-backend/internal/middleware"
	"github.com/javajoker/ipo-portal-backend/internal/services"
	"github.com/javajoker/ipo-portal-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db)
	storageService, _ := services.NewStorageService(cfg)
	statsService := services.NewStatsService(db)

	authService := services.NewAuthService(db, cfg)
	userService := services.NewUserService(db)
	ipoService := services.NewIPOService(db, notificationService)
	applicationService := services.NewApplicationService(db, cfg, notificationService)
	adminService := services.NewAdminService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, storageService, statsService)
	ipoHandler := handlers.NewIPOHandler(ipoService)
	applicationHandler := handlers.NewApplicationHandler(applicationService, statsService)
	adminHandler := handlers.NewAdminHandler(adminService, statsService)
	marketHandler := handlers.NewMarketHandler()
	referenceHandler := handlers.NewReferenceHandler()

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Authentication routes
	auth := r.Group("/auth")
	auth.Use(middleware.AuthRateLimit())
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
		auth.POST("/refresh", authHandler.RefreshToken)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
		auth.GET("/verify-email/:token", authHandler.VerifyEmail)
		auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
	}

	// User routes
	users := r.Group("/users")
	users.Use(middleware.AuthRequired())
	{
		users.GET("/profile", userHandler.GetProfile)
		users.PUT("/profile", userHandler.UpdateProfile)
		users.PUT("/password", userHandler.ChangePassword)
		users.POST("/kyc/documents", middleware.UploadRateLimit(), userHandler.UploadKYCDocument)
		users.GET("/stats", userHandler.GetStats)
	}

	// IPO routes
	ipos := r.Group("/ipos")
	{
		ipos.GET("", middleware.OptionalAuth(), ipoHandler.List)
		ipos.GET("/:id", middleware.OptionalAuth(), ipoHandler.Get)

		// Admin-only management
		protected := ipos.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			protected.POST("", ipoHandler.Create)
			protected.PUT("/:id", ipoHandler.Update)
			protected.POST("/:id/cancel", ipoHandler.Cancel)
			protected.DELETE("/:id", ipoHandler.Delete)
		}
	}

	// Application routes
	applications := r.Group("/applications")
	applications.Use(middleware.AuthRequired())
	{
		applications.POST("", middleware.VerifiedInvestorRequired(db), applicationHandler.Apply)
		applications.GET("", applicationHandler.ListMine)

		// Admin views go before the :id match
		applications.GET("/stats", middleware.AdminRequired(), applicationHandler.AdminStats)
		applications.GET("/admin/all", middleware.AdminRequired(), applicationHandler.ListAll)

		applications.GET("/:id", applicationHandler.Get)
		applications.PUT("/:id", applicationHandler.Amend)
		applications.DELETE("/:id", applicationHandler.Cancel)
		applications.PUT("/:id/status", middleware.AdminRequired(), applicationHandler.AdminUpdateStatus)
	}

	// Market data routes (public)
	market := r.Group("/market")
	{
		market.GET("/indices", marketHandler.Indices)
		market.GET("/gainers", marketHandler.Gainers)
		market.GET("/news", marketHandler.News)
	}

	// Reference data routes (public)
	r.GET("/brokers", referenceHandler.Brokers)
	r.GET("/sharks", referenceHandler.Sharks)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		admin.GET("/dashboard", adminHandler.Dashboard)

		adminUsers := admin.Group("/users")
		{
			adminUsers.GET("", adminHandler.ListUsers)
			adminUsers.GET("/:id", adminHandler.GetUser)
			adminUsers.PUT("/:id/kyc", adminHandler.UpdateKYCStatus)
			adminUsers.PUT("/:id/activate", adminHandler.ActivateUser)
			adminUsers.PUT("/:id/deactivate", adminHandler.DeactivateUser)
		}

		adminIPOs := admin.Group("/ipos")
		{
			adminIPOs.GET("/stats", adminHandler.IPOStats)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
