package scraper

import (
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/shopinsights/internal/config"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testScraperConfig() config.ScraperConfig {
	return config.ScraperConfig{
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
	}
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}
