// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/desoy/desoy-backend/internal/config"
	"github.com/desoy/desoy-backend/internal/handlers"
	"github.com/desoy/desoy-backend/internal/ledger"
	"github.com/desoy/desoy-backend/internal/middleware"
	"github.com/desoy/desoy-backend/internal/models"
	"github.com/desoy/desoy-backend/internal/services"
	"github.com/desoy/desoy-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	// Initialize services
	solanaService, err := services.NewSolanaService(cfg)
	if err != nil {
		return nil, err
	}
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}

	fundingLedger := ledger.New(ledger.NewGormStore(db))

	userService := services.NewUserService(db, cfg)
	assetService := services.NewAssetService(db, cfg, solanaService)
	paymentService := services.NewPaymentService(db, cfg)
	investmentService := services.NewInvestmentService(db, fundingLedger, paymentService)
	oracleService := services.NewOracleService(db, cfg, solanaService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	assetHandler := handlers.NewAssetHandler(assetService, storageService)
	investmentHandler := handlers.NewInvestmentHandler(investmentService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	oracleHandler := handlers.NewOracleHandler(oracleService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit(cfg))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit(cfg))
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// User routes
		users := v1.Group("/users")
		users.Use(middleware.AuthRequired())
		{
			users.GET("/me", authHandler.GetProfile)
			users.PATCH("/me", authHandler.UpdateProfile)
		}

		// Asset routes
		assets := v1.Group("/assets")
		{
			assets.GET("", middleware.OptionalAuth(), assetHandler.ListAssets)
			assets.GET("/:id", middleware.OptionalAuth(), assetHandler.GetAsset)
			assets.GET("/:id/updates", assetHandler.ListUpdates)

			// Producer routes
			protected := assets.Group("")
			protected.Use(middleware.AuthRequired(), middleware.RoleRequired(models.UserRoleProducer, models.UserRoleAdmin))
			{
				protected.POST("", assetHandler.CreateAsset)
				protected.PATCH("/:id", assetHandler.UpdateAsset)
				protected.DELETE("/:id", assetHandler.DeleteAsset)
				protected.POST("/:id/tokenize", assetHandler.TokenizeAsset)
				protected.PATCH("/:id/status", assetHandler.UpdateAssetStatus)
				protected.POST("/:id/updates", assetHandler.RecordUpdate)
				protected.POST("/:id/documents", middleware.UploadRateLimit(cfg), assetHandler.UploadDocument)
			}
		}

		// Investment routes
		investments := v1.Group("/investments")
		investments.Use(middleware.AuthRequired())
		{
			investments.POST("", middleware.RoleRequired(models.UserRoleInvestor, models.UserRoleAdmin), investmentHandler.CreateInvestment)
			investments.GET("", investmentHandler.ListInvestments)
			investments.GET("/:id", investmentHandler.GetInvestment)
			investments.PATCH("/:id", investmentHandler.UpdateInvestment)
			investments.POST("/:id/confirm", investmentHandler.ConfirmInvestment)
			investments.DELETE("/:id", investmentHandler.CancelInvestment)
		}

		// Payment routes
		payments := v1.Group("/payments")
		payments.Use(middleware.AuthRequired())
		{
			payments.POST("/intents", paymentHandler.CreateFundingIntent)
			payments.POST("/confirm", paymentHandler.ConfirmFunding)
			payments.GET("/history", paymentHandler.GetPaymentHistory)
		}

		// Oracle routes
		oracle := v1.Group("/oracle")
		{
			oracle.GET("/prices", oracleHandler.LatestPrices)
			oracle.GET("/prices/:commodity", oracleHandler.PriceHistory)
			oracle.POST("/prices", middleware.AuthRequired(), middleware.RoleRequired(models.UserRoleAdmin), oracleHandler.PushPrices)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r, nil
}
