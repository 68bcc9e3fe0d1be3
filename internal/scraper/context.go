// internal/scraper/context.go
package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/javajoker/shopinsights/internal/utils"
)

// ExtractBrandName prefers og:site_name, then application-name, then the title, then the domain.
func ExtractBrandName(doc *goquery.Document, base *url.URL) string {
	selectors := []string{
		"meta[property='og:site_name']",
		"meta[name='application-name']",
	}
	for _, sel := range selectors {
		if content := utils.CleanText(doc.Find(sel).First().AttrOr("content", "")); content != "" {
			return content
		}
	}

	if title := utils.CleanText(doc.Find("title").First().Text()); title != "" {
		return title
	}

	if base == nil {
		return ""
	}
	label := strings.Split(strings.TrimPrefix(strings.ToLower(base.Hostname()), "www."), ".")[0]
	if label == "" {
		return ""
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

func MetaDescription(doc *goquery.Document) string {
	for _, sel := range []string{"meta[name='description']", "meta[property='og:description']"} {
		if content := utils.CleanText(doc.Find(sel).First().AttrOr("content", "")); content != "" {
			return content
		}
	}
	return ""
}

// FindAboutLink returns the first link to an About or Our Story page.
func FindAboutLink(doc *goquery.Document, base *url.URL) string {
	var link string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		target, ok := linkTarget(base, a.AttrOr("href", ""))
		if !ok {
			return true
		}
		text := strings.ToLower(anchorText(a))
		href := strings.ToLower(a.AttrOr("href", ""))
		if containsAny(text, "about", "our story") || containsAny(href, "/about", "our-story") {
			link = target
			return false
		}
		return true
	})
	return link
}

// AboutSectionText returns the text of an in-page about section, if the homepage has one.
func AboutSectionText(doc *goquery.Document) string {
	section := doc.Find("[id*='about'], [class*='about-us'], [class*='about__'], section[class*='about']").First()
	if section.Length() == 0 {
		return ""
	}
	clone := section.Clone()
	clone.Find("script, style, noscript").Remove()
	return utils.CleanText(clone.Text())
}

// PageText is the readable main text of a content page such as About us.
func PageText(doc *goquery.Document) string {
	return mainText(doc)
}

// BrandContext joins the meta description and about text, truncated to limit.
func BrandContext(meta, about string, limit int) string {
	var parts []string
	for _, p := range []string{meta, about} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return utils.TruncateText(strings.Join(parts, " "), limit)
}
