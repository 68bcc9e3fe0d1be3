// internal/scraper/hero.go
package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/javajoker/shopinsights/internal/models"
	"github.com/javajoker/shopinsights/internal/utils"
)

// ExtractHeroCandidates lists same-store /products/<handle> links on the homepage.
func ExtractHeroCandidates(doc *goquery.Document, base *url.URL, max int) []models.HeroProduct {
	heroes := []models.HeroProduct{}
	seen := make(map[string]bool)

	doc.Find("a[href*='/products/']").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if max > 0 && len(heroes) >= max {
			return false
		}
		target, ok := linkTarget(base, a.AttrOr("href", ""))
		if !ok {
			return true
		}
		u, err := url.Parse(target)
		if err != nil || !sameStore(u, base) {
			return true
		}
		handle := productHandle(u.Path)
		if handle == "" || seen[handle] {
			return true
		}
		seen[handle] = true

		card := a.Closest("[class*='product'], li, article")
		if card.Length() == 0 {
			card = a
		}

		title := anchorText(a)
		if title == "" {
			title = utils.CleanText(card.Find("[class*='title']").First().Text())
		}
		if title == "" {
			title = handle
		}

		heroes = append(heroes, models.HeroProduct{
			Title:    title,
			URL:      base.Scheme + "://" + base.Host + "/products/" + handle,
			Handle:   handle,
			ImageURL: cardImage(card, base),
			Price:    utils.CleanText(card.Find("[class*='price']").First().Text()),
		})
		return true
	})

	return heroes
}

// productHandle returns the segment after the last /products/ in path.
func productHandle(path string) string {
	idx := strings.LastIndex(path, "/products/")
	if idx < 0 {
		return ""
	}
	handle := path[idx+len("/products/"):]
	if i := strings.IndexByte(handle, '/'); i >= 0 {
		handle = handle[:i]
	}
	handle = strings.TrimSuffix(strings.TrimSuffix(handle, ".json"), ".js")
	return strings.ToLower(handle)
}

func sameStore(u, base *url.URL) bool {
	if base == nil {
		return true
	}
	strip := func(h string) string { return strings.TrimPrefix(strings.ToLower(h), "www.") }
	return strip(u.Hostname()) == strip(base.Hostname())
}

func cardImage(card *goquery.Selection, base *url.URL) string {
	img := card.Find("img").First()
	if img.Length() == 0 {
		return ""
	}
	for _, attr := range []string{"src", "data-src"} {
		if v := strings.TrimSpace(img.AttrOr(attr, "")); v != "" && !strings.HasPrefix(v, "data:") {
			return utils.ResolveURL(base, v)
		}
	}
	if srcset := strings.TrimSpace(img.AttrOr("srcset", "")); srcset != "" {
		first := strings.Fields(strings.Split(srcset, ",")[0])
		if len(first) > 0 {
			return utils.ResolveURL(base, first[0])
		}
	}
	return ""
}

// MarkHeroProducts sets IsHeroProduct on the catalog entries the candidates point at.
// An exact handle match wins. Otherwise a loose match (handle containment or equal
// titles) picks the longest matching handle, catalog order breaking ties.
// It returns the number of products marked.
func MarkHeroProducts(products []models.Product, candidates []models.HeroProduct) int {
	byHandle := make(map[string]int, len(products))
	for i, p := range products {
		h := strings.ToLower(p.Handle)
		if _, dup := byHandle[h]; !dup && h != "" {
			byHandle[h] = i
		}
	}

	marked := 0
	mark := func(i int) {
		if !products[i].IsHeroProduct {
			products[i].IsHeroProduct = true
			marked++
		}
	}

	for _, c := range candidates {
		handle := strings.ToLower(c.Handle)
		if i, ok := byHandle[handle]; ok {
			mark(i)
			continue
		}

		best := -1
		for i, p := range products {
			if !looseMatch(p, handle, c.Title) {
				continue
			}
			if best < 0 || len(p.Handle) > len(products[best].Handle) {
				best = i
			}
		}
		if best >= 0 {
			mark(best)
		}
	}
	return marked
}

func looseMatch(p models.Product, handle, title string) bool {
	ph := strings.ToLower(p.Handle)
	if handle != "" && ph != "" && (strings.Contains(ph, handle) || strings.Contains(handle, ph)) {
		return true
	}
	return title != "" && strings.EqualFold(strings.TrimSpace(p.Title), strings.TrimSpace(title))
}
