// internal/scraper/links.go
package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/javajoker/shopinsights/internal/models"
)

var linkKindKeywords = []struct {
	kind     models.LinkKind
	keywords []string
}{
	{models.LinkKindTracking, []string{"track", "order status", "order-status"}},
	{models.LinkKindContact, []string{"contact"}},
	{models.LinkKindAbout, []string{"about", "our story", "our-story"}},
	{models.LinkKindShipping, []string{"shipping", "delivery"}},
	{models.LinkKindReturns, []string{"return", "refund", "exchange"}},
	{models.LinkKindFAQ, []string{"faq", "help", "questions", "support"}},
	{models.LinkKindBlog, []string{"blog", "journal", "news", "stories"}},
}

// ExtractImportantLinks collects navigation anchors from header, nav and footer regions
// (or the whole page when none exist), in document order, deduplicated and capped.
func ExtractImportantLinks(doc *goquery.Document, base *url.URL, max int) []models.Link {
	anchors := doc.Find("header a[href], nav a[href], footer a[href]")
	if anchors.Length() == 0 {
		anchors = doc.Find("a[href]")
	}

	links := []models.Link{}
	seen := make(map[string]bool)

	anchors.EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if max > 0 && len(links) >= max {
			return false
		}
		target, ok := linkTarget(base, a.AttrOr("href", ""))
		if !ok {
			return true
		}
		key := normalizeLink(target)
		if seen[key] {
			return true
		}

		label := anchorText(a)
		if label == "" {
			return true
		}

		seen[key] = true
		links = append(links, models.Link{
			Label: label,
			URL:   key,
			Kind:  classifyLink(label, key),
		})
		return true
	})

	return links
}

func classifyLink(label, target string) models.LinkKind {
	haystack := strings.ToLower(label + " " + target)
	for _, k := range linkKindKeywords {
		if containsAny(haystack, k.keywords...) {
			return k.kind
		}
	}
	return models.LinkKindOther
}
