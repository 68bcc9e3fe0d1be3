// internal/scraper/scraper.go
package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/shopinsights/internal/config"
	"github.com/javajoker/shopinsights/internal/models"
	"github.com/javajoker/shopinsights/internal/utils"
)

// Options selects how much of a store is read.
type Options struct {
	MaxCatalogPages int
	FollowSubpages  bool
}

// StoreResult is the normalized outcome of one storefront scrape.
type StoreResult struct {
	WebsiteURL     string
	Profile        models.StoreProfile
	Products       []models.Product
	Warnings       []ExtractionWarning
	EndpointErr    error
	ShopifyMarkers []string
	RawHomepage    []byte
	Duration       time.Duration
}

// Scraper runs the extraction pipeline for a single storefront.
type Scraper struct {
	fetcher PageFetcher
	catalog *CatalogReader
	cfg     config.ScraperConfig
	logger  *logrus.Entry
}

func NewScraper(fetcher PageFetcher, cfg config.ScraperConfig, logger *logrus.Logger) *Scraper {
	return &Scraper{
		fetcher: fetcher,
		catalog: NewCatalogReader(fetcher, cfg.CatalogPageSize, logger),
		cfg:     cfg,
		logger:  logger.WithField("component", "scraper"),
	}
}

// DefaultOptions reads the full catalog and follows policy, FAQ and About pages.
func (s *Scraper) DefaultOptions() Options {
	return Options{MaxCatalogPages: s.cfg.MaxCatalogPages, FollowSubpages: s.cfg.FollowSubpages}
}

// CompetitorOptions is the reduced read used for competitor candidates.
func (s *Scraper) CompetitorOptions() Options {
	return Options{MaxCatalogPages: s.cfg.CompetitorPages, FollowSubpages: s.cfg.FollowSubpages}
}

// ScrapeStore fetches and extracts a store. Only a homepage failure is returned as an
// error; everything else degrades into warnings and empty fields.
func (s *Scraper) ScrapeStore(ctx context.Context, websiteURL string, opts Options) (*StoreResult, error) {
	start := time.Now()

	normalized, err := utils.NormalizeURL(websiteURL)
	if err != nil {
		return nil, &FetchError{Kind: FetchConnection, URL: websiteURL, Err: err}
	}

	log := s.logger.WithField("url", normalized)
	log.Info("scraping store")

	resp, err := s.fetcher.Fetch(ctx, normalized, nil)
	if err != nil {
		log.WithError(err).Warn("homepage fetch failed")
		return nil, err
	}

	home, err := ParsePage(resp.Body, resp.FinalURL)
	if err != nil {
		return nil, fmt.Errorf("homepage of %s: %w", normalized, err)
	}

	result := &StoreResult{
		WebsiteURL:     normalized,
		RawHomepage:    resp.Body,
		ShopifyMarkers: DetectShopifyMarkers(resp.Body, resp.Header),
	}
	if resp.Truncated {
		result.warn("homepage", resp.FinalURL, fmt.Sprintf("body cut at %d bytes", s.cfg.MaxBodySize))
	}
	profile := &result.Profile

	profile.Name = ExtractBrandName(home.Doc, home.URL)
	contact := ExtractContact(home.Doc)
	profile.ContactEmail = optional(contact.Email)
	profile.ContactPhone = optional(contact.Phone)
	profile.SocialHandles = models.SocialHandles(ExtractSocial(home.Doc))
	profile.ImportantLinks = models.Links(ExtractImportantLinks(home.Doc, home.URL, s.cfg.MaxLinks))
	candidates := ExtractHeroCandidates(home.Doc, home.URL, s.cfg.MaxHeroProducts)

	s.readPolicies(ctx, home, profile, opts, result)
	profile.FAQs = models.FAQs(s.readFAQs(ctx, home, opts, result))
	profile.BrandContext = BrandContext(MetaDescription(home.Doc), s.readAbout(ctx, home, opts, result), s.cfg.ContextLimit)

	products, warnings, endpointErr := s.catalog.ReadCatalog(ctx, resp.FinalURL, opts.MaxCatalogPages)
	result.Warnings = append(result.Warnings, warnings...)
	if endpointErr != nil {
		result.EndpointErr = endpointErr
		products = []models.Product{}
		if len(result.ShopifyMarkers) > 0 {
			result.warn("catalog", "", "storefront carries Shopify markers but the catalog endpoint failed: "+endpointErr.Error())
		}
	}
	MarkHeroProducts(products, candidates)
	result.Products = products

	profile.HeroProducts = models.HeroProducts(candidates)
	profile.IsShopifyStore = endpointErr == nil
	now := time.Now()
	profile.LastScraped = &now
	profile.ScrapingStatus = models.ScrapingStatusCompleted

	result.Duration = time.Since(start)
	log.WithFields(logrus.Fields{
		"products":    len(products),
		"shopify":     profile.IsShopifyStore,
		"warnings":    len(result.Warnings),
		"duration_ms": result.Duration.Milliseconds(),
	}).Info("store scraped")

	return result, nil
}

func (s *Scraper) readPolicies(ctx context.Context, home *Page, profile *models.StoreProfile, opts Options, result *StoreResult) {
	links := FindPolicyLinks(home.Doc, home.URL)

	for _, category := range PolicyCategories {
		link, ok := links[category]
		if !ok {
			continue
		}

		var text *string
		if opts.FollowSubpages {
			if page := s.fetchPage(ctx, link, string(category)+"_policy", result); page != nil {
				text = optional(PolicyText(page.Doc, s.cfg.PolicyTextLimit))
			}
		}

		u := link
		switch category {
		case PolicyPrivacy:
			profile.PrivacyPolicyURL, profile.PrivacyPolicyText = &u, text
		case PolicyReturn:
			profile.ReturnPolicyURL, profile.ReturnPolicyText = &u, text
		case PolicyRefund:
			profile.RefundPolicyURL, profile.RefundPolicyText = &u, text
		}
	}
}

func (s *Scraper) readFAQs(ctx context.Context, home *Page, opts Options, result *StoreResult) []models.FAQ {
	if opts.FollowSubpages {
		if link := FindFAQLink(home.Doc, home.URL); link != "" {
			if page := s.fetchPage(ctx, link, "faqs", result); page != nil {
				if faqs := ExtractFAQs(page.Doc, s.cfg.MaxFAQs, s.cfg.FAQAnswerLimit); len(faqs) > 0 {
					return faqs
				}
			}
		}
	}
	return ExtractFAQs(home.Doc, s.cfg.MaxFAQs, s.cfg.FAQAnswerLimit)
}

func (s *Scraper) readAbout(ctx context.Context, home *Page, opts Options, result *StoreResult) string {
	if opts.FollowSubpages {
		if link := FindAboutLink(home.Doc, home.URL); link != "" {
			if page := s.fetchPage(ctx, link, "brand_context", result); page != nil {
				if text := PageText(page.Doc); text != "" {
					return text
				}
			}
		}
	}
	return AboutSectionText(home.Doc)
}

// fetchPage fetches a sub-page; failures become warnings.
func (s *Scraper) fetchPage(ctx context.Context, link, field string, result *StoreResult) *Page {
	resp, err := s.fetcher.Fetch(ctx, link, nil)
	if err != nil {
		result.warn(field, link, err.Error())
		return nil
	}
	page, err := ParsePage(resp.Body, resp.FinalURL)
	if err != nil {
		result.warn(field, link, err.Error())
		return nil
	}
	return page
}

func (r *StoreResult) warn(field, url, message string) {
	r.Warnings = append(r.Warnings, ExtractionWarning{Field: field, URL: url, Message: message})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
