package http

import (
	"github.com/gin-gonic/gin"
	"github.com/monitorlens/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", handler.ListProducts)
			products.GET("/multi-store", handler.MultiStoreProducts)
			products.GET("/search", handler.SearchProducts)
			products.GET("/:id", handler.GetProduct)
			products.GET("/:id/compare", handler.CompareProduct)
		}

		v1.GET("/brands", handler.ListBrands)
		v1.GET("/stores", handler.ListStores)
		v1.GET("/stats", handler.Stats)
	}

	return router
}
