// internal/handlers/brand.go
package handlers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/shopinsights/internal/i18n"
	"github.com/javajoker/shopinsights/internal/models"
	"github.com/javajoker/shopinsights/internal/repository"
	"github.com/javajoker/shopinsights/internal/services"
	"github.com/javajoker/shopinsights/internal/utils"
)

// BrandAnalyzer is the part of services.BrandService the HTTP layer calls.
type BrandAnalyzer interface {
	AnalyzeBrand(ctx context.Context, req *services.AnalyzeRequest) (*services.AnalyzeResult, error)
	ListBrands(ctx context.Context, params utils.PaginationParams) ([]models.Brand, int64, error)
	GetBrand(ctx context.Context, id uuid.UUID) (*models.Brand, error)
	ListProducts(ctx context.Context, brandID uuid.UUID, params utils.PaginationParams) ([]models.Product, int64, error)
	DeleteBrand(ctx context.Context, id uuid.UUID) error
}

type BrandHandler struct {
	brandService BrandAnalyzer
	logger       *logrus.Entry
}

func NewBrandHandler(brandService BrandAnalyzer, logger *logrus.Logger) *BrandHandler {
	return &BrandHandler{
		brandService: brandService,
		logger:       logger.WithField("component", "brand_handler"),
	}
}

// POST /api/analyze
func (h *BrandHandler) Analyze(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := h.brandService.AnalyzeBrand(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidWebsiteURL) {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		h.logger.WithError(err).WithField("website_url", req.WebsiteURL).Error("analysis failed")
		utils.InternalErrorResponse(c, "")
		return
	}

	if result.Failed() {
		upstream := i18n.T(lang, i18n.KeyBrandScrapeFailed)
		if result.Brand.ScrapingErrors != nil {
			upstream = *result.Brand.ScrapingErrors
		}
		utils.ScrapeFailedResponse(c, upstream, gin.H{"brand": result.Brand})
		return
	}

	utils.SuccessResponseWithMeta(c, result, gin.H{
		"message": i18n.T(lang, i18n.KeyBrandAnalyzed),
	})
}

// GET /api/brands
func (h *BrandHandler) ListBrands(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	brands, total, err := h.brandService.ListBrands(c.Request.Context(), params)
	if err != nil {
		h.logger.WithError(err).Error("list brands")
		utils.InternalErrorResponse(c, "")
		return
	}

	result := utils.CreatePaginationResult(brands, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /api/brand/:id
func (h *BrandHandler) GetBrand(c *gin.Context) {
	id, ok := h.brandID(c)
	if !ok {
		return
	}

	brand, err := h.brandService.GetBrand(c.Request.Context(), id)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	utils.SuccessResponse(c, brand)
}

// GET /api/brand/:id/products
func (h *BrandHandler) ListProducts(c *gin.Context) {
	id, ok := h.brandID(c)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	products, total, err := h.brandService.ListProducts(c.Request.Context(), id, params)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	result := utils.CreatePaginationResult(products, total, params)
	utils.PaginatedResponse(c, result)
}

// DELETE /api/brand/:id
func (h *BrandHandler) DeleteBrand(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := h.brandID(c)
	if !ok {
		return
	}

	if err := h.brandService.DeleteBrand(c.Request.Context(), id); err != nil {
		h.respondLookupError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyBrandDeleted),
		"id":      id,
	})
}

func (h *BrandHandler) brandID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationBadID, "brand"), nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *BrandHandler) respondLookupError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		utils.NotFoundResponse(c, "brand")
		return
	}
	h.logger.WithError(err).WithField("path", c.Request.URL.Path).Error("brand lookup failed")
	utils.InternalErrorResponse(c, "")
}
