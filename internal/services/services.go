// internal/services/services.go
package services

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/shopinsights/internal/config"
	"github.com/javajoker/shopinsights/internal/discovery"
	"github.com/javajoker/shopinsights/internal/llm"
	"github.com/javajoker/shopinsights/internal/repository"
	"github.com/javajoker/shopinsights/internal/scraper"
)

// NewAnalysisStack wires the fetcher, scraper, discovery, summarizer and snapshot
// archive into a BrandService backed by db.
func NewAnalysisStack(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) (*BrandService, error) {
	store := repository.NewBrandRepository(db)

	fetcher := scraper.NewFetcher(cfg.Scraper, logger)
	storeScraper := scraper.NewScraper(fetcher, cfg.Scraper, logger)

	var searcher discovery.Searcher
	if cfg.Discovery.SearchEndpoint != "" {
		searcher = discovery.NewHTMLSearcher(fetcher, cfg.Discovery.SearchEndpoint)
	}
	finder := discovery.NewDiscoverer(searcher, cfg.Discovery, logger)
	competitors := NewCompetitorService(storeScraper, finder, store, cfg.Discovery, logger)

	summarizer := llm.NewSummarizer(llm.NewClient(cfg.LLM, logger), cfg.LLM, logger)

	snapshots, err := NewSnapshotService(cfg, logger)
	if err != nil {
		return nil, err
	}

	return NewBrandService(store, storeScraper, competitors, summarizer, snapshots, cfg, logger), nil
}
