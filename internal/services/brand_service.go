// internal/services/brand_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/shopinsights/internal/config"
	"github.com/javajoker/shopinsights/internal/llm"
	"github.com/javajoker/shopinsights/internal/models"
	"github.com/javajoker/shopinsights/internal/repository"
	"github.com/javajoker/shopinsights/internal/utils"
)

// BrandSummarizer is the LLM step; its errors are recorded, never returned.
type BrandSummarizer interface {
	Summarize(ctx context.Context, in llm.Input) (*llm.Summary, error)
	Compare(ctx context.Context, brand llm.StoreStats, competitors []llm.StoreStats) (*llm.Comparison, error)
}

type BrandService struct {
	store       repository.Store
	scraper     StoreScraper
	competitors *CompetitorService
	summarizer  BrandSummarizer
	snapshots   *SnapshotService
	config      *config.Config
	logger      *logrus.Entry
}

type AnalyzeRequest struct {
	WebsiteURL         string `json:"website_url" validate:"required,store_url"`
	IncludeCompetitors bool   `json:"include_competitors"`
	IncludeSummary     *bool  `json:"include_summary,omitempty"`
}

type AnalyzeResult struct {
	Brand          *models.Brand       `json:"brand"`
	Status         string              `json:"status"`
	IsShopifyStore bool                `json:"is_shopify_store"`
	ProductsCount  int                 `json:"products_count"`
	Competitors    []models.Competitor `json:"competitors"`
	Analyses       []models.Analysis   `json:"analyses"`
	Warnings       []string            `json:"warnings"`
	SummaryError   string              `json:"summary_error,omitempty"`
	DurationMs     int64               `json:"duration_ms"`
}

// Failed reports whether the storefront homepage could not be read.
func (r *AnalyzeResult) Failed() bool {
	return r.Brand != nil && r.Brand.ScrapingStatus == models.ScrapingStatusFailed
}

func NewBrandService(store repository.Store, scraper StoreScraper, competitors *CompetitorService, summarizer BrandSummarizer, snapshots *SnapshotService, cfg *config.Config, logger *logrus.Logger) *BrandService {
	return &BrandService{
		store:       store,
		scraper:     scraper,
		competitors: competitors,
		summarizer:  summarizer,
		snapshots:   snapshots,
		config:      cfg,
		logger:      logger.WithField("component", "brand_service"),
	}
}

// AnalyzeBrand runs the whole pipeline for one storefront. A homepage that cannot be
// fetched yields a result whose brand is marked failed; the returned error is reserved
// for invalid input and for the brand row itself failing to persist.
func (s *BrandService) AnalyzeBrand(ctx context.Context, req *AnalyzeRequest) (*AnalyzeResult, error) {
	start := time.Now()

	websiteURL, err := utils.NormalizeURL(req.WebsiteURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidWebsiteURL, err)
	}
	domain := utils.ExtractDomain(websiteURL)
	log := s.logger.WithFields(logrus.Fields{"url": websiteURL, "domain": domain})

	brand, err := s.store.FindByDomain(ctx, domain)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		brand = &models.Brand{}
	case err != nil:
		return nil, err
	}
	brand.WebsiteURL = websiteURL
	brand.ScrapingStatus = models.ScrapingStatusInProgress
	brand.ScrapingErrors = nil
	if err := s.store.Save(ctx, brand); err != nil {
		return nil, err
	}

	result := &AnalyzeResult{
		Brand:       brand,
		Competitors: []models.Competitor{},
		Analyses:    []models.Analysis{},
		Warnings:    []string{},
	}
	defer func() { result.DurationMs = time.Since(start).Milliseconds() }()

	scraped, err := s.scraper.ScrapeStore(ctx, websiteURL, s.scraper.DefaultOptions())
	if err != nil {
		msg := err.Error()
		now := time.Now()
		brand.ScrapingStatus = models.ScrapingStatusFailed
		brand.ScrapingErrors = &msg
		brand.LastScraped = &now
		if saveErr := s.store.Save(ctx, brand); saveErr != nil {
			log.WithError(saveErr).Error("failed to record failed scrape")
		}
		log.WithError(err).Warn("brand scrape failed")
		result.Status = string(brand.ScrapingStatus)
		return result, nil
	}

	brand.StoreProfile = scraped.Profile
	for _, w := range scraped.Warnings {
		result.Warnings = append(result.Warnings, w.String())
	}

	var stageErrors []string
	if scraped.EndpointErr != nil {
		stageErrors = append(stageErrors, "catalog endpoint: "+scraped.EndpointErr.Error())
	}

	if s.snapshots.Enabled() {
		if warning := s.archive(ctx, brand, scraped.RawHomepage, scraped.Products); warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
	}

	products := scraped.Products
	brand.ScrapingErrors = joinErrors(stageErrors)
	if err := s.store.SaveWithCatalog(ctx, brand, products); err != nil {
		log.WithError(err).Error("failed to persist catalog")
		stageErrors = append(stageErrors, "persist catalog: "+err.Error())
		brand.ScrapingErrors = joinErrors(stageErrors)
		if err := s.store.Save(ctx, brand); err != nil {
			return nil, err
		}
	} else {
		result.ProductsCount = len(products)
	}

	errorsBefore := len(stageErrors)

	if req.IncludeCompetitors && s.competitors != nil {
		competitors, err := s.competitors.AnalyzeCompetitors(ctx, brand, products)
		if err != nil {
			stageErrors = append(stageErrors, err.Error())
		} else {
			result.Competitors = competitors
		}
	}

	includeSummary := s.config.LLM.Enabled()
	if req.IncludeSummary != nil {
		includeSummary = *req.IncludeSummary
	}

	var comparison *llm.Comparison
	if includeSummary && s.summarizer != nil {
		comparison = s.summarize(ctx, brand, products, result, &stageErrors)
	}

	if len(result.Competitors) > 0 && s.competitors != nil {
		report := s.competitors.BuildReport(brand, len(products), result.Competitors)
		if comparison != nil {
			report.Results["llm_insights"] = comparison.Results
			report.Model = comparison.Model
			s.applyComparison(ctx, result.Competitors, comparison)
		}
		report.ProcessingTimeMs = time.Since(start).Milliseconds()
		if err := s.store.CreateAnalysis(ctx, report); err != nil {
			stageErrors = append(stageErrors, "persist competitor analysis: "+err.Error())
		} else {
			result.Analyses = append(result.Analyses, *report)
		}
	}

	if len(stageErrors) > errorsBefore {
		brand.ScrapingErrors = joinErrors(stageErrors)
		if err := s.store.Save(ctx, brand); err != nil {
			log.WithError(err).Error("failed to record stage errors")
		}
	}

	result.Status = string(brand.ScrapingStatus)
	result.IsShopifyStore = brand.IsShopifyStore

	log.WithFields(logrus.Fields{
		"products":    result.ProductsCount,
		"competitors": len(result.Competitors),
		"analyses":    len(result.Analyses),
		"shopify":     brand.IsShopifyStore,
	}).Info("brand analyzed")

	return result, nil
}

// summarize stores the brand summary and returns the competitor comparison, if any.
func (s *BrandService) summarize(ctx context.Context, brand *models.Brand, products []models.Product, result *AnalyzeResult, stageErrors *[]string) *llm.Comparison {
	started := time.Now()
	summary, err := s.summarizer.Summarize(ctx, llm.NewInput(brand.WebsiteURL, brand.StoreProfile, products))
	if err != nil {
		result.SummaryError = err.Error()
		*stageErrors = append(*stageErrors, "summary: "+err.Error())
		return nil
	}

	analysis := &models.Analysis{
		BrandID:          brand.ID,
		AnalysisType:     models.AnalysisTypeBrandSummary,
		Title:            fmt.Sprintf("Brand summary for %s", brand.Name),
		Description:      describeSummary(summary.Results),
		Results:          models.JSONB(summary.Results),
		Insights:         models.StringList(summary.Insights),
		Recommendations:  models.StringList(summary.Recommendations),
		AnalysisStatus:   models.AnalysisStatusCompleted,
		ProcessingTimeMs: time.Since(started).Milliseconds(),
		Model:            summary.Model,
	}
	if err := s.store.CreateAnalysis(ctx, analysis); err != nil {
		*stageErrors = append(*stageErrors, "persist summary: "+err.Error())
	} else {
		result.Analyses = append(result.Analyses, *analysis)
	}

	var stats []llm.StoreStats
	for _, c := range result.Competitors {
		if c.ScrapingStatus == models.ScrapingStatusCompleted {
			stats = append(stats, storeStats(c.Domain, c.StoreProfile, c.ProductCount, nil))
		}
	}
	if len(stats) == 0 {
		return nil
	}

	comparison, err := s.summarizer.Compare(ctx, storeStats(brand.Domain, brand.StoreProfile, len(products), productTypes(products)), stats)
	if err != nil {
		result.SummaryError = err.Error()
		*stageErrors = append(*stageErrors, "competitor comparison: "+err.Error())
		return nil
	}
	return comparison
}

func (s *BrandService) applyComparison(ctx context.Context, competitors []models.Competitor, comparison *llm.Comparison) {
	for i := range competitors {
		c := &competitors[i]
		assessment, ok := comparison.Competitors[strings.ToLower(c.Domain)]
		if !ok {
			continue
		}
		if assessment.MarketPosition != "" {
			c.MarketPosition = &assessment.MarketPosition
		}
		if assessment.EstimatedRevenue != "" {
			c.EstimatedRevenue = &assessment.EstimatedRevenue
		}
		if c.ID == uuid.Nil {
			continue
		}
		if err := s.store.UpdateCompetitor(ctx, c); err != nil {
			s.logger.WithError(err).WithField("competitor", c.Domain).Warn("failed to store competitor assessment")
		}
	}
}

func (s *BrandService) archive(ctx context.Context, brand *models.Brand, homepage []byte, products []models.Product) string {
	var problems []string

	snap, err := s.snapshots.Save(ctx, brand.Domain, "homepage.html", "text/html; charset=utf-8", homepage)
	if err != nil {
		problems = append(problems, err.Error())
	} else {
		brand.SnapshotURL = &snap.URL
	}

	if catalog, err := json.Marshal(products); err != nil {
		problems = append(problems, err.Error())
	} else if _, err := s.snapshots.Save(ctx, brand.Domain, "products.json", "application/json", catalog); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) == 0 {
		return ""
	}
	s.logger.WithField("domain", brand.Domain).Warn("snapshot archive incomplete")
	return "snapshot: " + strings.Join(problems, "; ")
}

func (s *BrandService) ListBrands(ctx context.Context, params utils.PaginationParams) ([]models.Brand, int64, error) {
	return s.store.List(ctx, params)
}

// GetBrand returns the brand with products, competitors and analyses.
func (s *BrandService) GetBrand(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	return s.store.GetByID(ctx, id, true)
}

func (s *BrandService) ListProducts(ctx context.Context, brandID uuid.UUID, params utils.PaginationParams) ([]models.Product, int64, error) {
	if _, err := s.store.GetByID(ctx, brandID, false); err != nil {
		return nil, 0, err
	}
	return s.store.ListProducts(ctx, brandID, params)
}

func (s *BrandService) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("brand_id", id).Info("brand deleted")
	return nil
}

func storeStats(domain string, p models.StoreProfile, productCount int, types []string) llm.StoreStats {
	return llm.StoreStats{
		Name:         p.Name,
		Domain:       domain,
		Products:     productCount,
		Social:       len(p.SocialHandles),
		FAQs:         len(p.FAQs),
		Policies:     p.PolicyCount(),
		ProductTypes: uniqueStrings(types, 10),
	}
}

func describeSummary(results map[string]interface{}) string {
	for _, key := range []string{"brand_summary", "summary"} {
		if v, ok := results[key].(string); ok {
			return utils.TruncateText(v, 500)
		}
	}
	return ""
}

func joinErrors(errs []string) *string {
	if len(errs) == 0 {
		return nil
	}
	joined := strings.Join(errs, "; ")
	return &joined
}

func uniqueStrings(values []string, max int) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
		if len(out) == max {
			break
		}
	}
	return out
}
