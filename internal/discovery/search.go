// internal/discovery/search.go
package discovery

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/javajoker/shopinsights/internal/scraper"
)

// Searcher returns result URLs (or bare domains) for a query.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// HTMLSearcher reads the result page of an HTML search endpoint such as
// https://html.duckduckgo.com/html/. Requests go through the scraper's fetcher so the
// same politeness limits apply.
type HTMLSearcher struct {
	fetcher  scraper.PageFetcher
	endpoint string
}

func NewHTMLSearcher(fetcher scraper.PageFetcher, endpoint string) *HTMLSearcher {
	return &HTMLSearcher{fetcher: fetcher, endpoint: endpoint}
}

var resultSelectors = []string{"a.result__a", "a.result-link", "h2 > a[href]", "h3 > a[href]"}

func (s *HTMLSearcher) Search(ctx context.Context, query string, limit int) ([]string, error) {
	endpoint, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("search endpoint: %w", err)
	}
	q := endpoint.Query()
	q.Set("q", query)
	endpoint.RawQuery = q.Encode()

	resp, err := s.fetcher.Fetch(ctx, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}

	var results []string
	for _, sel := range resultSelectors {
		doc.Find(sel).EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if target := unwrapResult(a.AttrOr("href", "")); target != "" {
				results = append(results, target)
			}
			return limit <= 0 || len(results) < limit
		})
		if len(results) > 0 {
			break
		}
	}
	return results, nil
}

// unwrapResult decodes redirect wrappers like //duckduckgo.com/l/?uddg=<target>.
func unwrapResult(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	for _, key := range []string{"uddg", "u", "url"} {
		if wrapped := u.Query().Get(key); wrapped != "" && strings.HasPrefix(wrapped, "http") {
			return wrapped
		}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

// SeedSearcher ignores the query and returns a fixed list of known storefronts.
type SeedSearcher struct {
	Domains []string
}

func (s SeedSearcher) Search(_ context.Context, _ string, limit int) ([]string, error) {
	if limit > 0 && len(s.Domains) > limit {
		return append([]string(nil), s.Domains[:limit]...), nil
	}
	return append([]string(nil), s.Domains...), nil
}
