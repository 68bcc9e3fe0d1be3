// internal/scraper/page.go
package scraper

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/javajoker/shopinsights/internal/utils"
)

// Page is a parsed HTML document together with the URL it was served from.
type Page struct {
	URL *url.URL
	Doc *goquery.Document
}

func ParsePage(body []byte, pageURL string) (*Page, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Page{URL: u, Doc: doc}, nil
}

// mainText returns the readable text of the page with chrome and scripts removed.
func mainText(doc *goquery.Document) string {
	body := doc.Find("body").First()
	if body.Length() == 0 {
		body = doc.Selection
	}
	clone := body.Clone()
	clone.Find("script, style, noscript, template, svg, nav, header, footer, form").Remove()

	content := clone.Find("main, [role='main'], .shopify-policy__container, article, .rte").First()
	if content.Length() > 0 && strings.TrimSpace(content.Text()) != "" {
		return utils.CleanText(content.Text())
	}
	return utils.CleanText(clone.Text())
}

// anchorText is the visible label of a link, falling back to accessible attributes.
func anchorText(a *goquery.Selection) string {
	if text := utils.CleanText(a.Text()); text != "" {
		return text
	}
	for _, attr := range []string{"aria-label", "title"} {
		if v, ok := a.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return utils.CleanText(v)
		}
	}
	if alt, ok := a.Find("img[alt]").First().Attr("alt"); ok {
		return utils.CleanText(alt)
	}
	return ""
}

// linkTarget resolves an anchor href and skips non-navigational schemes.
func linkTarget(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	lower := strings.ToLower(href)
	switch {
	case href == "", strings.HasPrefix(href, "#"),
		strings.HasPrefix(lower, "javascript:"),
		strings.HasPrefix(lower, "mailto:"),
		strings.HasPrefix(lower, "tel:"):
		return "", false
	}
	resolved := utils.ResolveURL(base, href)
	if resolved == "" {
		return "", false
	}
	return resolved, true
}

// normalizeLink drops fragments and trailing slashes so equivalent links compare equal.
func normalizeLink(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	if u.Path != "/" {
		u.Path = strings.TrimRight(u.Path, "/")
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
