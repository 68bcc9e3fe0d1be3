package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/shopinsights/internal/config"
	"github.com/javajoker/shopinsights/internal/discovery"
	"github.com/javajoker/shopinsights/internal/llm"
	"github.com/javajoker/shopinsights/internal/models"
	"github.com/javajoker/shopinsights/internal/repository"
	"github.com/javajoker/shopinsights/internal/scraper"
	"github.com/javajoker/shopinsights/internal/utils"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Scraper: config.ScraperConfig{
			UserAgent:       "insights-test/1.0",
			RequestTimeout:  5 * time.Second,
			MaxRedirects:    3,
			MaxBodySize:     1 << 20,
			CatalogPageSize: 250,
			MaxCatalogPages: 20,
			MaxFAQs:         10,
			MaxLinks:        25,
			MaxHeroProducts: 10,
			ContextLimit:    1000,
			PolicyTextLimit: 2000,
			FAQAnswerLimit:  500,
			FollowSubpages:  true,
			CompetitorPages: 1,
		},
		Discovery: config.DiscoveryConfig{Enabled: true, MaxCompetitors: 3, Workers: 2},
		LLM:       config.LLMConfig{Model: "gpt-3.5-turbo", Timeout: time.Second, PromptBudget: 6000},
	}
}

// memoryStore is an in-memory repository.Store.
type memoryStore struct {
	mu          sync.Mutex
	brands      map[uuid.UUID]*models.Brand
	products    map[uuid.UUID][]models.Product
	competitors map[uuid.UUID]models.Competitor
	analyses    []models.Analysis
	catalogErr  error
	creates     int
	updates     int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		brands:      map[uuid.UUID]*models.Brand{},
		products:    map[uuid.UUID][]models.Product{},
		competitors: map[uuid.UUID]models.Competitor{},
	}
}

var _ repository.Store = (*memoryStore)(nil)

func (m *memoryStore) FindByDomain(_ context.Context, domain string) (*models.Brand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.brands {
		if b.Domain == domain {
			clone := *b
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryStore) GetByID(_ context.Context, id uuid.UUID, withRelations bool) (*models.Brand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.brands[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *b
	if withRelations {
		clone.Products = m.products[id]
		for _, c := range m.competitors {
			if c.BrandID == id {
				clone.Competitors = append(clone.Competitors, c)
			}
		}
		for _, a := range m.analyses {
			if a.BrandID == id {
				clone.Analyses = append(clone.Analyses, a)
			}
		}
	}
	return &clone, nil
}

func (m *memoryStore) List(_ context.Context, params utils.PaginationParams) ([]models.Brand, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Brand
	for _, b := range m.brands {
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

func (m *memoryStore) Save(_ context.Context, brand *models.Brand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked(brand)
}

func (m *memoryStore) saveLocked(brand *models.Brand) error {
	brand.Domain = utils.ExtractDomain(brand.WebsiteURL)
	if brand.Domain == "" {
		return models.ErrInvalidWebsiteURL
	}
	if brand.ID == uuid.Nil {
		brand.ID = uuid.New()
	}
	clone := *brand
	m.brands[brand.ID] = &clone
	return nil
}

func (m *memoryStore) SaveWithCatalog(_ context.Context, brand *models.Brand, products []models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.catalogErr != nil {
		return m.catalogErr
	}
	for _, p := range products {
		if (p.Price.Valid && p.Price.Decimal.IsNegative()) || p.Title == "" {
			return models.ErrNegativePrice
		}
	}
	if err := m.saveLocked(brand); err != nil {
		return err
	}
	for i := range products {
		products[i].BrandID = brand.ID
	}
	m.products[brand.ID] = append([]models.Product(nil), products...)
	return nil
}

func (m *memoryStore) ListProducts(_ context.Context, brandID uuid.UUID, _ utils.PaginationParams) ([]models.Product, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[brandID], int64(len(m.products[brandID])), nil
}

func (m *memoryStore) CreateCompetitor(_ context.Context, c *models.Competitor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = uuid.New()
	m.competitors[c.ID] = *c
	m.creates++
	return nil
}

func (m *memoryStore) UpdateCompetitor(_ context.Context, c *models.Competitor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.competitors[c.ID]; !ok {
		return repository.ErrNotFound
	}
	m.competitors[c.ID] = *c
	m.updates++
	return nil
}

func (m *memoryStore) CreateAnalysis(_ context.Context, a *models.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = uuid.New()
	m.analyses = append(m.analyses, *a)
	return nil
}

func (m *memoryStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.brands[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.brands, id)
	delete(m.products, id)
	return nil
}

func (m *memoryStore) brandByDomain(domain string) *models.Brand {
	b, _ := m.FindByDomain(context.Background(), domain)
	return b
}

// fakeScraper answers per URL with a canned result or error.
type fakeScraper struct {
	mu      sync.Mutex
	results map[string]*scraper.StoreResult
	errs    map[string]error
	calls   []string
}

func (f *fakeScraper) ScrapeStore(_ context.Context, websiteURL string, _ scraper.Options) (*scraper.StoreResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, websiteURL)
	f.mu.Unlock()
	if err, ok := f.errs[websiteURL]; ok {
		return nil, err
	}
	if r, ok := f.results[websiteURL]; ok {
		return r, nil
	}
	return nil, &scraper.FetchError{Kind: scraper.FetchConnection, URL: websiteURL, Err: errors.New("no such host")}
}

func (f *fakeScraper) DefaultOptions() scraper.Options {
	return scraper.Options{MaxCatalogPages: 20, FollowSubpages: true}
}
func (f *fakeScraper) CompetitorOptions() scraper.Options {
	return scraper.Options{MaxCatalogPages: 1, FollowSubpages: true}
}

type fakeFinder struct {
	domains []string
	err     error
}

func (f fakeFinder) Discover(context.Context, discovery.BrandContext) ([]string, error) {
	return f.domains, f.err
}

type fakeSummarizer struct {
	summary    *llm.Summary
	comparison *llm.Comparison
	err        error
}

func (f *fakeSummarizer) Summarize(context.Context, llm.Input) (*llm.Summary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

func (f *fakeSummarizer) Compare(context.Context, llm.StoreStats, []llm.StoreStats) (*llm.Comparison, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.comparison, nil
}

func defaultParams() utils.PaginationParams {
	return utils.NormalizePagination(utils.PaginationParams{})
}
