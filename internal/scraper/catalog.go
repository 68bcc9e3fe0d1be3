// internal/scraper/catalog.go
package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/shopinsights/internal/models"
	"github.com/javajoker/shopinsights/internal/utils"
)

// PageFetcher is the part of *Fetcher the readers need.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string, headers http.Header) (*Response, error)
}

// CatalogReader pages through a store's public /products.json endpoint.
type CatalogReader struct {
	fetcher  PageFetcher
	pageSize int
	logger   *logrus.Entry
}

func NewCatalogReader(fetcher PageFetcher, pageSize int, logger *logrus.Logger) *CatalogReader {
	if pageSize <= 0 {
		pageSize = 250
	}
	return &CatalogReader{
		fetcher:  fetcher,
		pageSize: pageSize,
		logger:   logger.WithField("component", "catalog_reader"),
	}
}

// smallest page size tried when a page does not fit in the body limit
const minCatalogPageSize = 10

// ReadCatalog requests pages 1..maxPages until one comes back empty. A failure on the
// first page is an *EndpointError. Later failures stop paging and keep what was read.
// A page cut by the body size limit is re-read at half the page size; maxPages counts
// pages of the configured size.
func (r *CatalogReader) ReadCatalog(ctx context.Context, baseURL string, maxPages int) ([]models.Product, []ExtractionWarning, error) {
	origin := utils.BaseURL(baseURL)
	if maxPages <= 0 {
		maxPages = 1
	}

	products := []models.Product{}
	var warnings []ExtractionWarning
	seen := make(map[string]bool)
	pageSize := r.pageSize

	for page := 1; page <= maxPages; page++ {
		pageURL := fmt.Sprintf("%s/products.json?limit=%d&page=%d", origin, pageSize, page)

		raw, truncated, err := r.fetchPage(ctx, pageURL)
		if err != nil {
			if page == 1 && len(products) == 0 {
				return nil, nil, err
			}
			warnings = append(warnings, ExtractionWarning{Field: "catalog", URL: pageURL, Message: err.Error()})
			break
		}
		if truncated {
			if pageSize/2 >= minCatalogPageSize {
				// page p of size n covers pages 2p-1 and 2p of size n/2
				r.logger.WithFields(logrus.Fields{"url": pageURL, "page_size": pageSize / 2}).Debug("catalog page too large, halving page size")
				pageSize /= 2
				maxPages *= 2
				page = 2*page - 2
				continue
			}
			warnings = append(warnings, ExtractionWarning{
				Field:   "catalog",
				URL:     pageURL,
				Message: fmt.Sprintf("catalog page exceeds the response size limit even at %d products per page", pageSize),
			})
			break
		}
		if len(raw) == 0 {
			break
		}

		added := 0
		for _, item := range raw {
			product, itemWarnings, ok := mapProduct(item, origin)
			warnings = append(warnings, itemWarnings...)
			if !ok {
				continue
			}
			if product.ShopifyID != "" {
				if seen[product.ShopifyID] {
					continue
				}
				seen[product.ShopifyID] = true
			}
			products = append(products, product)
			added++
		}

		// some stores repeat the last page instead of returning an empty one
		if added == 0 {
			break
		}
		if page == maxPages && len(raw) >= pageSize {
			warnings = append(warnings, ExtractionWarning{
				Field:   "catalog",
				URL:     pageURL,
				Message: fmt.Sprintf("stopped at page ceiling %d", maxPages),
			})
		}
	}

	r.logger.WithFields(logrus.Fields{
		"store":    origin,
		"products": len(products),
	}).Debug("catalog read")

	return products, warnings, nil
}

// fetchPage returns the raw products of one page. A body cut by the size limit is
// reported as truncated without being decoded.
func (r *CatalogReader) fetchPage(ctx context.Context, pageURL string) ([]json.RawMessage, bool, error) {
	resp, err := r.fetcher.Fetch(ctx, pageURL, http.Header{"Accept": []string{"application/json"}})
	if err != nil {
		kind := EndpointUnreachable
		if fe, ok := IsFetchError(err); ok && fe.Kind == FetchHTTP4xx {
			kind = EndpointNotShopify
		}
		return nil, false, &EndpointError{Kind: kind, URL: pageURL, Err: err}
	}
	if resp.Truncated {
		return nil, true, nil
	}

	var envelope struct {
		Products *[]json.RawMessage `json:"products"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(resp.Body), &envelope); err != nil {
		return nil, false, &EndpointError{Kind: EndpointMalformed, URL: pageURL, Err: err}
	}
	if envelope.Products == nil {
		return nil, false, &EndpointError{Kind: EndpointMalformed, URL: pageURL, Err: errors.New(`response has no "products" array`)}
	}
	return *envelope.Products, false, nil
}

// Boundary types for the Shopify catalog format. Numbers may arrive as strings and
// tags as either a comma separated string or a list.

type shopifyProduct struct {
	ID          flexString       `json:"id"`
	Title       string           `json:"title"`
	Handle      string           `json:"handle"`
	BodyHTML    *string          `json:"body_html"`
	Vendor      string           `json:"vendor"`
	ProductType string           `json:"product_type"`
	Tags        flexTags         `json:"tags"`
	Available   *bool            `json:"available"`
	Variants    []shopifyVariant `json:"variants"`
	Images      []shopifyImage   `json:"images"`
}

type shopifyVariant struct {
	ID                flexString `json:"id"`
	Title             string     `json:"title"`
	Price             flexString `json:"price"`
	CompareAtPrice    flexString `json:"compare_at_price"`
	SKU               *string    `json:"sku"`
	Available         *bool      `json:"available"`
	InventoryQuantity flexString `json:"inventory_quantity"`
}

type shopifyImage struct {
	Src string `json:"src"`
}

// flexString accepts a JSON string, number or null.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", string(b))
		}
		*f = flexString(n.String())
		return nil
	}
}

// flexTags accepts "a, b" or ["a","b"].
type flexTags []string

func (t *flexTags) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		var tags []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				tags = append(tags, part)
			}
		}
		*t = tags
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	*t = list
	return nil
}

func mapProduct(raw json.RawMessage, origin string) (models.Product, []ExtractionWarning, bool) {
	var sp shopifyProduct
	if err := json.Unmarshal(raw, &sp); err != nil {
		return models.Product{}, []ExtractionWarning{{Field: "product", URL: origin, Message: "skipped product with unexpected shape: " + err.Error()}}, false
	}

	title := strings.TrimSpace(sp.Title)
	if title == "" {
		title = sp.Handle
	}
	if title == "" {
		return models.Product{}, []ExtractionWarning{{Field: "product", URL: origin, Message: fmt.Sprintf("skipped product %s without title or handle", sp.ID)}}, false
	}

	var warnings []ExtractionWarning
	price := func(field string, v flexString) decimal.NullDecimal {
		d, warn := parsePrice(v)
		if warn != "" {
			warnings = append(warnings, ExtractionWarning{Field: field, URL: origin + "/products/" + sp.Handle, Message: warn})
		}
		return d
	}

	p := models.Product{
		ShopifyID:   string(sp.ID),
		Handle:      sp.Handle,
		Title:       title,
		Vendor:      sp.Vendor,
		ProductType: sp.ProductType,
		Tags:        pq.StringArray(sp.Tags),
		Available:   true,
	}
	if p.Tags == nil {
		p.Tags = pq.StringArray{}
	}
	if sp.Handle != "" {
		p.ProductURL = origin + "/products/" + sp.Handle
	}
	if sp.BodyHTML != nil {
		p.Description = stripMarkup(*sp.BodyHTML)
	}

	p.ImageURLs = pq.StringArray{}
	for _, img := range sp.Images {
		if src := strings.TrimSpace(img.Src); src != "" {
			p.ImageURLs = append(p.ImageURLs, src)
		}
	}
	if len(p.ImageURLs) > 0 {
		p.FeaturedImage = p.ImageURLs[0]
	}

	anyAvailability := false
	anyAvailable := false
	var inventory *int
	p.Variants = models.Variants{}
	for i, v := range sp.Variants {
		variant := models.Variant{
			ID:             string(v.ID),
			Title:          v.Title,
			Price:          price("variant_price", v.Price),
			CompareAtPrice: price("variant_compare_at_price", v.CompareAtPrice),
			Available:      true,
		}
		if v.SKU != nil {
			variant.SKU = *v.SKU
		}
		if v.Available != nil {
			anyAvailability = true
			variant.Available = *v.Available
			anyAvailable = anyAvailable || *v.Available
		}
		if qty, err := strconv.Atoi(string(v.InventoryQuantity)); err == nil {
			q := qty
			variant.InventoryQuantity = &q
			if inventory == nil {
				inventory = new(int)
			}
			*inventory += qty
		}
		if i == 0 {
			p.Price = variant.Price
			p.CompareAtPrice = variant.CompareAtPrice
		}
		p.Variants = append(p.Variants, variant)
	}

	switch {
	case anyAvailability:
		p.Available = anyAvailable
	case sp.Available != nil:
		p.Available = *sp.Available
	}
	p.InventoryQuantity = inventory

	return p, warnings, true
}

// parsePrice returns a null decimal with a warning for unparseable or negative values.
func parsePrice(v flexString) (decimal.NullDecimal, string) {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return decimal.NullDecimal{}, ""
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Sprintf("unparseable price %q", s)
	}
	if d.IsNegative() {
		return decimal.NullDecimal{}, fmt.Sprintf("negative price %s dropped", s)
	}
	return decimal.NewNullDecimal(d.Round(2)), ""
}

func stripMarkup(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return utils.CleanText(fragment)
	}
	doc.Find("script, style").Remove()
	return utils.CleanText(doc.Text())
}
