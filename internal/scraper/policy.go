// internal/scraper/policy.go
package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/javajoker/shopinsights/internal/utils"
)

type PolicyCategory string

const (
	PolicyPrivacy PolicyCategory = "privacy"
	PolicyReturn  PolicyCategory = "return"
	PolicyRefund  PolicyCategory = "refund"
)

var PolicyCategories = []PolicyCategory{PolicyPrivacy, PolicyReturn, PolicyRefund}

var policyKeywords = map[PolicyCategory][]string{
	PolicyPrivacy: {"privacy", "data protection"},
	PolicyReturn:  {"return", "exchange"},
	PolicyRefund:  {"refund"},
}

// FindPolicyLinks returns, per category, the first anchor whose text matches a keyword.
// Anchors are then tried by href. Categories with no match are absent from the map.
func FindPolicyLinks(doc *goquery.Document, base *url.URL) map[PolicyCategory]string {
	type anchor struct{ text, href, target string }
	var anchors []anchor

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		target, ok := linkTarget(base, a.AttrOr("href", ""))
		if !ok {
			return
		}
		anchors = append(anchors, anchor{
			text:   strings.ToLower(anchorText(a)),
			href:   strings.ToLower(a.AttrOr("href", "")),
			target: target,
		})
	})

	links := make(map[PolicyCategory]string)
	for _, category := range PolicyCategories {
		keywords := policyKeywords[category]
		for _, a := range anchors {
			if containsAny(a.text, keywords...) {
				links[category] = a.target
				break
			}
		}
		if _, found := links[category]; found {
			continue
		}
		for _, a := range anchors {
			if containsAny(a.href, keywords...) {
				links[category] = a.target
				break
			}
		}
	}
	return links
}

// PolicyText extracts the readable body of a policy page.
func PolicyText(doc *goquery.Document, limit int) string {
	return utils.TruncateText(mainText(doc), limit)
}
