// internal/handlers/health.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/shopinsights/internal/config"
	"github.com/javajoker/shopinsights/internal/i18n"
	"github.com/javajoker/shopinsights/internal/utils"
)

const serviceName = "Shopify Insights Fetcher"

// GET /health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyHealthOK),
		"service": serviceName,
		"version": config.Version,
	})
}
