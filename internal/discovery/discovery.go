// internal/discovery/discovery.go
package discovery

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"

	"github.com/javajoker/shopinsights/internal/config"
)

// BrandContext is what discovery knows about the brand being analyzed.
type BrandContext struct {
	Name         string
	Domain       string
	Context      string
	ProductTypes []string
}

// Marketplaces, social platforms and search engines are never competitors.
var defaultBlocked = []string{
	"amazon.com", "ebay.com", "etsy.com", "walmart.com", "target.com", "aliexpress.com",
	"alibaba.com", "temu.com", "shein.com",
	"facebook.com", "instagram.com", "twitter.com", "x.com", "tiktok.com", "youtube.com",
	"pinterest.com", "linkedin.com", "reddit.com", "quora.com",
	"google.com", "bing.com", "duckduckgo.com", "yahoo.com", "wikipedia.org",
	"shopify.com", "trustpilot.com", "yelp.com",
}

const resultsPerQuery = 10

// Discoverer turns a brand into a bounded list of candidate competitor domains.
type Discoverer struct {
	searcher Searcher
	seeds    SeedSearcher
	cfg      config.DiscoveryConfig
	blocked  map[string]bool
	logger   *logrus.Entry
}

// NewDiscoverer builds a discoverer. A nil searcher, or search disabled in the config,
// leaves only the seed list.
func NewDiscoverer(searcher Searcher, cfg config.DiscoveryConfig, logger *logrus.Logger) *Discoverer {
	blocked := make(map[string]bool)
	for _, d := range append(append([]string{}, defaultBlocked...), cfg.BlockedDomains...) {
		if reg := registrableDomain(d); reg != "" {
			blocked[reg] = true
		}
	}
	if !cfg.Enabled {
		searcher = nil
	}
	return &Discoverer{
		searcher: searcher,
		seeds:    SeedSearcher{Domains: cfg.SeedDomains},
		cfg:      cfg,
		blocked:  blocked,
		logger:   logger.WithField("component", "discovery"),
	}
}

// Queries derives the search queries for a brand, most specific first.
func Queries(brand BrandContext) []string {
	name := strings.TrimSpace(brand.Name)
	if name == "" {
		name = strings.Split(brand.Domain, ".")[0]
	}

	var queries []string
	if name != "" {
		queries = append(queries, name+" competitors", "stores like "+name)
	}
	if productType := topProductType(brand.ProductTypes); productType != "" {
		queries = append(queries, productType+" online store")
	}
	return queries
}

// Discover never returns more than MaxCompetitors domains and never the brand's own.
func (d *Discoverer) Discover(ctx context.Context, brand BrandContext) ([]string, error) {
	limit := d.cfg.MaxCompetitors
	if limit <= 0 {
		return []string{}, nil
	}

	own := registrableDomain(brand.Domain)
	log := d.logger.WithFields(logrus.Fields{"brand": brand.Name, "domain": own})

	picked := []string{}
	seen := map[string]bool{own: true}
	collect := func(results []string) {
		for _, r := range results {
			if len(picked) >= limit {
				return
			}
			domain := registrableDomain(r)
			if domain == "" || seen[domain] || d.blocked[domain] {
				continue
			}
			seen[domain] = true
			picked = append(picked, domain)
		}
	}

	if d.searcher != nil {
		for _, query := range Queries(brand) {
			if len(picked) >= limit {
				break
			}
			results, err := d.searcher.Search(ctx, query, resultsPerQuery)
			if err != nil {
				if ctx.Err() != nil {
					return nil, fmt.Errorf("discovery cancelled: %w", ctx.Err())
				}
				log.WithError(err).WithField("query", query).Warn("competitor search failed")
				continue
			}
			collect(results)
		}
	}

	if len(picked) == 0 {
		seeds, _ := d.seeds.Search(ctx, "", 0)
		collect(seeds)
		log.WithField("candidates", len(picked)).Info("using seed competitors")
	} else {
		log.WithField("candidates", len(picked)).Info("competitors discovered")
	}

	return picked, nil
}

// registrableDomain reduces a URL or host to its eTLD+1, e.g. shop.example.co.uk to
// example.co.uk. Shopify subdomains stay distinct since myshopify.com is a public suffix.
func registrableDomain(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return ""
	}
	host := raw
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		host = u.Hostname()
	} else if i := strings.IndexAny(raw, "/:?"); i >= 0 {
		host = raw[:i]
	}
	host = strings.TrimSuffix(strings.TrimPrefix(host, "www."), ".")
	if !strings.Contains(host, ".") {
		return ""
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	return domain
}

func topProductType(types []string) string {
	counts := make(map[string]int)
	for _, t := range types {
		if t = strings.TrimSpace(t); t != "" {
			counts[t]++
		}
	}
	if len(counts) == 0 {
		return ""
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys[0]
}
