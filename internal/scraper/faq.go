// internal/scraper/faq.go
package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/javajoker/shopinsights/internal/models"
	"github.com/javajoker/shopinsights/internal/utils"
)

// FAQRulesVersion identifies the rule set below. Bump it whenever a rule changes.
const FAQRulesVersion = "2024.1"

const maxQuestionLength = 300

// faqRule pairs a question node with its answer. An empty Answer expression means the
// answer is the rest of the question's parent (accordion style).
type faqRule struct {
	Name     string
	Question string
	Answer   string
}

var faqRules = []faqRule{
	{Name: "details-summary", Question: "//details/summary"},
	{Name: "definition-list", Question: "//dl/dt", Answer: "./following-sibling::dd[1]"},
	{
		Name:     "question-class",
		Question: "//*[contains(concat(' ', normalize-space(@class), ' '), ' question ') or contains(@class, 'faq-question') or contains(@class, 'faq__question') or contains(@class, 'accordion__title')]",
		Answer:   "./following-sibling::*[1]",
	},
	{
		Name:     "heading-question",
		Question: "//h2[contains(., '?')] | //h3[contains(., '?')] | //h4[contains(., '?')]",
		Answer:   "./following-sibling::*[1][not(self::h1 or self::h2 or self::h3 or self::h4)]",
	},
}

var faqLinkKeywords = []string{"faq", "frequently asked", "common questions"}

// FindFAQLink returns the first link that looks like an FAQ page.
func FindFAQLink(doc *goquery.Document, base *url.URL) string {
	var link string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		target, ok := linkTarget(base, a.AttrOr("href", ""))
		if !ok {
			return true
		}
		text := strings.ToLower(anchorText(a))
		href := strings.ToLower(a.AttrOr("href", ""))
		if containsAny(text, faqLinkKeywords...) || containsAny(href, "faq") {
			link = target
			return false
		}
		return true
	})
	return link
}

// ExtractFAQs applies the rules in order, de-duplicating by question text.
func ExtractFAQs(doc *goquery.Document, maxItems, answerLimit int) []models.FAQ {
	if len(doc.Nodes) == 0 {
		return nil
	}
	root := doc.Nodes[0]

	faqs := []models.FAQ{}
	seen := make(map[string]bool)

	for _, rule := range faqRules {
		questions, err := htmlquery.QueryAll(root, rule.Question)
		if err != nil {
			continue
		}
		for _, q := range questions {
			if maxItems > 0 && len(faqs) >= maxItems {
				return faqs
			}

			question := utils.CleanText(htmlquery.InnerText(q))
			if question == "" || len(question) > maxQuestionLength {
				continue
			}
			key := strings.ToLower(question)
			if seen[key] {
				continue
			}

			answer := answerFor(q, rule)
			if answer == "" {
				continue
			}

			seen[key] = true
			faqs = append(faqs, models.FAQ{
				Question: question,
				Answer:   utils.TruncateText(answer, answerLimit),
			})
		}
	}
	return faqs
}

func answerFor(q *html.Node, rule faqRule) string {
	if rule.Answer == "" {
		var b strings.Builder
		if q.Parent == nil {
			return ""
		}
		for sib := q.Parent.FirstChild; sib != nil; sib = sib.NextSibling {
			if sib == q {
				continue
			}
			b.WriteString(htmlquery.InnerText(sib))
			b.WriteByte(' ')
		}
		return utils.CleanText(b.String())
	}

	node, err := htmlquery.Query(q, rule.Answer)
	if err != nil || node == nil {
		return ""
	}
	return utils.CleanText(htmlquery.InnerText(node))
}
