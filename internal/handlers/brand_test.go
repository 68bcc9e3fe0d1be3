package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/javajoker/shopinsights/internal/i18n"
	"github.com/javajoker/shopinsights/internal/models"
	"github.com/javajoker/shopinsights/internal/repository"
	"github.com/javajoker/shopinsights/internal/services"
	"github.com/javajoker/shopinsights/internal/utils"
)

type fakeBrandService struct {
	result     *services.AnalyzeResult
	analyzeErr error
	lastReq    *services.AnalyzeRequest

	brands   []models.Brand
	products []models.Product
	known    map[uuid.UUID]*models.Brand
	lastPage utils.PaginationParams
}

func (f *fakeBrandService) AnalyzeBrand(ctx context.Context, req *services.AnalyzeRequest) (*services.AnalyzeResult, error) {
	f.lastReq = req
	return f.result, f.analyzeErr
}

func (f *fakeBrandService) ListBrands(ctx context.Context, params utils.PaginationParams) ([]models.Brand, int64, error) {
	f.lastPage = params
	return f.brands, int64(len(f.brands)), nil
}

func (f *fakeBrandService) GetBrand(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	if b, ok := f.known[id]; ok {
		return b, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeBrandService) ListProducts(ctx context.Context, brandID uuid.UUID, params utils.PaginationParams) ([]models.Product, int64, error) {
	if _, ok := f.known[brandID]; !ok {
		return nil, 0, repository.ErrNotFound
	}
	f.lastPage = params
	return f.products, int64(len(f.products)), nil
}

func (f *fakeBrandService) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.known[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.known, id)
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

type BrandHandlerTestSuite struct {
	suite.Suite
	service *fakeBrandService
	engine  *gin.Engine
	brandID uuid.UUID
}

func (suite *BrandHandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(i18n.Initialize())
}

func (suite *BrandHandlerTestSuite) SetupTest() {
	suite.brandID = uuid.New()
	brand := &models.Brand{WebsiteURL: "https://shop.com", Domain: "shop.com"}
	brand.ID = suite.brandID

	suite.service = &fakeBrandService{
		known:    map[uuid.UUID]*models.Brand{suite.brandID: brand},
		brands:   []models.Brand{*brand},
		products: []models.Product{{Title: "Logo Tee"}, {Title: "Hoodie"}},
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	h := NewBrandHandler(suite.service, logger)

	suite.engine = gin.New()
	api := suite.engine.Group("/api")
	api.POST("/analyze", h.Analyze)
	api.GET("/brands", h.ListBrands)
	api.GET("/brand/:id", h.GetBrand)
	api.GET("/brand/:id/products", h.ListProducts)
	api.DELETE("/brand/:id", h.DeleteBrand)
	api.GET("/health", Health)
}

func (suite *BrandHandlerTestSuite) do(method, path, body string) (*httptest.ResponseRecorder, envelope) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	suite.engine.ServeHTTP(w, req)

	var env envelope
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func (suite *BrandHandlerTestSuite) TestAnalyzeSuccess() {
	brand := &models.Brand{WebsiteURL: "https://shop.com", Domain: "shop.com"}
	brand.ScrapingStatus = models.ScrapingStatusCompleted
	suite.service.result = &services.AnalyzeResult{
		Brand:          brand,
		Status:         string(models.ScrapingStatusCompleted),
		IsShopifyStore: true,
		ProductsCount:  3,
		Warnings:       []string{},
	}

	w, env := suite.do(http.MethodPost, "/api/analyze", `{"website_url":"shop.com","include_competitors":true}`)

	suite.Equal(http.StatusOK, w.Code)
	suite.True(env.Success)
	suite.Equal("shop.com", suite.service.lastReq.WebsiteURL)
	suite.True(suite.service.lastReq.IncludeCompetitors)
	suite.Nil(suite.service.lastReq.IncludeSummary)

	var data map[string]interface{}
	suite.Require().NoError(json.Unmarshal(env.Data, &data))
	suite.Equal(float64(3), data["products_count"])
	suite.Equal(true, data["is_shopify_store"])
}

func (suite *BrandHandlerTestSuite) TestAnalyzeFailedHomepageIsBadGateway() {
	msg := "fetch https://shop.com: connection: dial tcp: no such host"
	brand := &models.Brand{WebsiteURL: "https://shop.com", Domain: "shop.com"}
	brand.ScrapingStatus = models.ScrapingStatusFailed
	brand.ScrapingErrors = &msg
	suite.service.result = &services.AnalyzeResult{Brand: brand, Status: string(models.ScrapingStatusFailed)}

	w, env := suite.do(http.MethodPost, "/api/analyze", `{"website_url":"https://shop.com"}`)

	suite.Equal(http.StatusBadGateway, w.Code)
	suite.False(env.Success)
	suite.Equal("SCRAPE_FAILED", env.Error.Code)
	suite.Equal(msg, env.Error.Message)
	suite.Contains(string(env.Error.Details), `"domain":"shop.com"`)
}

func (suite *BrandHandlerTestSuite) TestAnalyzeRejectsBadInput() {
	w, env := suite.do(http.MethodPost, "/api/analyze", `{"website_url":"not a url"}`)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("VALIDATION_ERROR", env.Error.Code)
	suite.Nil(suite.service.lastReq)

	w, env = suite.do(http.MethodPost, "/api/analyze", `{}`)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("VALIDATION_ERROR", env.Error.Code)

	w, env = suite.do(http.MethodPost, "/api/analyze", `{"website_url":`)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("BAD_REQUEST", env.Error.Code)
}

func (suite *BrandHandlerTestSuite) TestAnalyzeServiceErrors() {
	suite.service.analyzeErr = fmt.Errorf("%w: missing host", models.ErrInvalidWebsiteURL)
	w, env := suite.do(http.MethodPost, "/api/analyze", `{"website_url":"https://shop.com"}`)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("BAD_REQUEST", env.Error.Code)

	suite.service.analyzeErr = errors.New("database is down")
	w, env = suite.do(http.MethodPost, "/api/analyze", `{"website_url":"https://shop.com"}`)
	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.Equal("INTERNAL_ERROR", env.Error.Code)
	suite.NotContains(env.Error.Message, "database")
}

func (suite *BrandHandlerTestSuite) TestListBrandsIsPaginated() {
	w, env := suite.do(http.MethodGet, "/api/brands?page=1&limit=500&order=sideways", "")

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("1", w.Header().Get("X-Total-Count"))
	suite.Equal(20, suite.service.lastPage.Limit)
	suite.Equal("desc", suite.service.lastPage.Order)
	suite.Contains(string(env.Meta), `"total":1`)
}

func (suite *BrandHandlerTestSuite) TestGetBrand() {
	w, env := suite.do(http.MethodGet, "/api/brand/"+suite.brandID.String(), "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(string(env.Data), suite.brandID.String())

	w, env = suite.do(http.MethodGet, "/api/brand/"+uuid.NewString(), "")
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("NOT_FOUND", env.Error.Code)
	suite.Equal("Brand not found", env.Error.Message)

	w, env = suite.do(http.MethodGet, "/api/brand/42", "")
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("BAD_REQUEST", env.Error.Code)
}

func (suite *BrandHandlerTestSuite) TestListProducts() {
	w, env := suite.do(http.MethodGet, "/api/brand/"+suite.brandID.String()+"/products?limit=1", "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(1, suite.service.lastPage.Limit)
	suite.Contains(string(env.Data), "Logo Tee")

	w, _ = suite.do(http.MethodGet, "/api/brand/"+uuid.NewString()+"/products", "")
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *BrandHandlerTestSuite) TestDeleteBrand() {
	path := "/api/brand/" + suite.brandID.String()

	w, env := suite.do(http.MethodDelete, path, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(string(env.Data), "Brand deleted")

	w, _ = suite.do(http.MethodDelete, path, "")
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *BrandHandlerTestSuite) TestHealth() {
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	suite.engine.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	var body map[string]string
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal("healthy", body["status"])
	suite.Equal("Shopify Insights Fetcher", body["service"])
	suite.NotEmpty(body["version"])
}

func TestBrandHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(BrandHandlerTestSuite))
}
