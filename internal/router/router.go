// internal/router/router.go
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/shopinsights/internal/config"
	"github.com/javajoker/shopinsights/internal/handlers"
	"github.com/javajoker/shopinsights/internal/middleware"
	"github.com/javajoker/shopinsights/internal/services"
)

func Initialize(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) (*gin.Engine, error) {
	// Initialize services
	brandService, err := services.NewAnalysisStack(db, cfg, logger)
	if err != nil {
		return nil, err
	}

	return Setup(brandService, cfg, logger), nil
}

// Setup mounts the API on a fresh engine around an already built service.
func Setup(brandService handlers.BrandAnalyzer, cfg *config.Config, logger *logrus.Logger) *gin.Engine {
	// Initialize handlers
	brandHandler := handlers.NewBrandHandler(brandService, logger)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimiter().Middleware())

	// Health check
	r.GET("/health", handlers.Health)

	api := r.Group("/api")
	{
		api.GET("/health", handlers.Health)

		api.POST("/analyze", middleware.AnalyzeRateLimiter(cfg.RateLimit).Middleware(), brandHandler.Analyze)

		api.GET("/brands", brandHandler.ListBrands)

		brand := api.Group("/brand/:id")
		{
			brand.GET("", brandHandler.GetBrand)
			brand.GET("/products", brandHandler.ListProducts)
			brand.DELETE("", brandHandler.DeleteBrand)
		}
	}

	return r
}
