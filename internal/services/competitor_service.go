// internal/services/competitor_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/javajoker/shopinsights/internal/config"
	"github.com/javajoker/shopinsights/internal/discovery"
	"github.com/javajoker/shopinsights/internal/models"
	"github.com/javajoker/shopinsights/internal/repository"
	"github.com/javajoker/shopinsights/internal/scraper"
)

// StoreScraper runs the extraction pipeline against one storefront.
type StoreScraper interface {
	ScrapeStore(ctx context.Context, websiteURL string, opts scraper.Options) (*scraper.StoreResult, error)
	DefaultOptions() scraper.Options
	CompetitorOptions() scraper.Options
}

// CompetitorFinder proposes candidate competitor domains.
type CompetitorFinder interface {
	Discover(ctx context.Context, brand discovery.BrandContext) ([]string, error)
}

type CompetitorService struct {
	scraper StoreScraper
	finder  CompetitorFinder
	store   repository.Store
	config  config.DiscoveryConfig
	logger  *logrus.Entry
}

func NewCompetitorService(scraper StoreScraper, finder CompetitorFinder, store repository.Store, cfg config.DiscoveryConfig, logger *logrus.Logger) *CompetitorService {
	return &CompetitorService{
		scraper: scraper,
		finder:  finder,
		store:   store,
		config:  cfg,
		logger:  logger.WithField("component", "competitors"),
	}
}

// AnalyzeCompetitors discovers candidates for a brand and scrapes each one. Every
// candidate is persisted as completed or failed; one failure never affects another.
func (s *CompetitorService) AnalyzeCompetitors(ctx context.Context, brand *models.Brand, products []models.Product) ([]models.Competitor, error) {
	candidates, err := s.finder.Discover(ctx, discovery.BrandContext{
		Name:         brand.Name,
		Domain:       brand.Domain,
		Context:      brand.BrandContext,
		ProductTypes: productTypes(products),
	})
	if err != nil {
		return nil, fmt.Errorf("competitor discovery failed: %w", err)
	}

	competitors := make([]models.Competitor, len(candidates))

	var g errgroup.Group
	workers := s.config.Workers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)

	for i, domain := range candidates {
		i, domain := i, domain
		g.Go(func() error {
			competitors[i] = s.analyzeCandidate(ctx, brand, domain)
			return nil
		})
	}
	_ = g.Wait()

	return competitors, nil
}

func (s *CompetitorService) analyzeCandidate(ctx context.Context, brand *models.Brand, domain string) models.Competitor {
	log := s.logger.WithFields(logrus.Fields{"brand_id": brand.ID, "competitor": domain})

	comp := models.Competitor{
		BrandID:    brand.ID,
		WebsiteURL: "https://" + domain,
		Domain:     domain,
	}
	comp.Name = domain
	comp.ScrapingStatus = models.ScrapingStatusInProgress

	persisted := true
	if err := s.store.CreateCompetitor(ctx, &comp); err != nil {
		log.WithError(err).Error("failed to record competitor")
		persisted = false
	}

	result, err := s.scraper.ScrapeStore(ctx, comp.WebsiteURL, s.scraper.CompetitorOptions())
	if err != nil {
		now := time.Now()
		msg := err.Error()
		comp.ScrapingStatus = models.ScrapingStatusFailed
		comp.ScrapingErrors = &msg
		comp.LastScraped = &now
		log.WithError(err).Warn("competitor scrape failed")
	} else {
		comp.StoreProfile = result.Profile
		if comp.Name == "" {
			comp.Name = domain
		}
		comp.ProductCount = len(result.Products)
		if result.EndpointErr != nil {
			msg := "catalog endpoint: " + result.EndpointErr.Error()
			comp.ScrapingErrors = &msg
		}
		log.WithField("products", comp.ProductCount).Info("competitor scraped")
	}

	if persisted {
		if err := s.store.UpdateCompetitor(ctx, &comp); err != nil {
			log.WithError(err).Error("failed to update competitor")
		}
	}
	return comp
}

// BuildReport compares a brand with its successfully scraped competitors using
// catalog size, social presence, FAQ depth and policy coverage.
func (s *CompetitorService) BuildReport(brand *models.Brand, productCount int, competitors []models.Competitor) *models.Analysis {
	var scraped []models.Competitor
	for _, c := range competitors {
		if c.ScrapingStatus == models.ScrapingStatusCompleted {
			scraped = append(scraped, c)
		}
	}

	report := competitiveReport{
		BrandName:       brand.Name,
		AnalysisDate:    time.Now().UTC().Format(time.RFC3339),
		Analyzed:        len(scraped),
		Attempted:       len(competitors),
		MarketPosition:  "Unknown",
		Advantages:      []string{},
		Disadvantages:   []string{},
		Opportunities:   []string{},
		Recommendations: []string{},
	}

	if len(scraped) > 0 {
		var products, social, faqs float64
		for _, c := range scraped {
			products += float64(c.ProductCount)
			social += float64(len(c.SocialHandles))
			faqs += float64(len(c.FAQs))
		}
		n := float64(len(scraped))
		avgProducts, avgSocial, avgFAQs := products/n, social/n, faqs/n

		switch brandProducts := float64(productCount); {
		case brandProducts > avgProducts*1.5:
			report.MarketPosition = "Strong"
		case brandProducts > avgProducts*0.8:
			report.MarketPosition = "Competitive"
		default:
			report.MarketPosition = "Emerging"
		}

		switch brandSocial := float64(len(brand.SocialHandles)); {
		case brandSocial > avgSocial:
			report.Advantages = append(report.Advantages, "Strong social media presence")
		case brandSocial < avgSocial:
			report.Disadvantages = append(report.Disadvantages, "Limited social media presence")
		}

		switch brandFAQs := float64(len(brand.FAQs)); {
		case brandFAQs > avgFAQs:
			report.Advantages = append(report.Advantages, "Comprehensive customer support")
		case brandFAQs < avgFAQs:
			report.Disadvantages = append(report.Disadvantages, "Limited customer support information")
		}

		for _, c := range scraped {
			if c.PolicyCount() > brand.PolicyCount() {
				report.Opportunities = append(report.Opportunities, fmt.Sprintf("Match the policy coverage of %s", c.Domain))
			}
		}
	}

	if report.MarketPosition == "Emerging" {
		report.Recommendations = append(report.Recommendations, "Expand product catalog", "Increase social media presence")
	}
	for _, d := range report.Disadvantages {
		switch d {
		case "Limited social media presence":
			report.Recommendations = append(report.Recommendations, "Develop social media strategy")
		case "Limited customer support information":
			report.Recommendations = append(report.Recommendations, "Improve customer support documentation")
		}
	}

	profiles := make([]interface{}, 0, len(competitors))
	for _, c := range competitors {
		profile := map[string]interface{}{
			"domain": c.Domain,
			"status": string(c.ScrapingStatus),
		}
		if c.ScrapingStatus == models.ScrapingStatusCompleted {
			strengths, weaknesses := assessCompetitor(c)
			profile["name"] = c.Name
			profile["product_count"] = c.ProductCount
			profile["strengths"] = strengths
			profile["weaknesses"] = weaknesses
		}
		profiles = append(profiles, profile)
	}

	return &models.Analysis{
		BrandID:      brand.ID,
		AnalysisType: models.AnalysisTypeCompetitorAnalysis,
		Title:        fmt.Sprintf("Competitive analysis for %s", brand.Name),
		Description:  fmt.Sprintf("%d of %d competitor candidates analyzed", report.Analyzed, report.Attempted),
		Results: models.JSONB{
			"brand_name":                report.BrandName,
			"analysis_date":             report.AnalysisDate,
			"competitors_analyzed":      report.Analyzed,
			"competitors_attempted":     report.Attempted,
			"market_position":           report.MarketPosition,
			"competitive_advantages":    report.Advantages,
			"competitive_disadvantages": report.Disadvantages,
			"market_opportunities":      report.Opportunities,
			"strategic_recommendations": report.Recommendations,
			"competitors":               profiles,
		},
		Insights:        models.StringList(append(append([]string{}, report.Advantages...), report.Disadvantages...)),
		Recommendations: models.StringList(report.Recommendations),
		AnalysisStatus:  models.AnalysisStatusCompleted,
	}
}

type competitiveReport struct {
	BrandName       string
	AnalysisDate    string
	Analyzed        int
	Attempted       int
	MarketPosition  string
	Advantages      []string
	Disadvantages   []string
	Opportunities   []string
	Recommendations []string
}

func assessCompetitor(c models.Competitor) (strengths, weaknesses []string) {
	strengths, weaknesses = []string{}, []string{}

	switch {
	case c.ProductCount > 100:
		strengths = append(strengths, "Large product catalog")
	case c.ProductCount < 20:
		weaknesses = append(weaknesses, "Limited product range")
	}

	switch social := len(c.SocialHandles); {
	case social >= 3:
		strengths = append(strengths, "Strong social media presence")
	case social < 2:
		weaknesses = append(weaknesses, "Limited social media presence")
	}

	if len(c.HeroProducts) >= 3 {
		strengths = append(strengths, "Good product merchandising")
	}

	switch faqs := len(c.FAQs); {
	case faqs >= 5:
		strengths = append(strengths, "Comprehensive customer support")
	case faqs < 2:
		weaknesses = append(weaknesses, "Limited customer support information")
	}

	switch policies := c.PolicyCount(); {
	case policies >= 3:
		strengths = append(strengths, "Comprehensive policy documentation")
	case policies < 2:
		weaknesses = append(weaknesses, "Incomplete policy information")
	}

	return strengths, weaknesses
}

func productTypes(products []models.Product) []string {
	var types []string
	for _, p := range products {
		if p.ProductType != "" {
			types = append(types, p.ProductType)
		}
	}
	return types
}
