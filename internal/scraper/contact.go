// internal/scraper/contact.go
package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe = regexp.MustCompile(`(\+?1?[-.\s]?)?\(?([0-9]{3})\)?[-.\s]?([0-9]{3})[-.\s]?([0-9]{4})`)

	ignoredEmailParts = []string{"noreply", "no-reply", "donotreply", "example.com", "example.org", "sentry", "wixpress.com"}
	assetSuffixes     = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".avif"}
)

// Contact holds the first email and phone number found on a page.
type Contact struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// ExtractContact checks mailto: and tel: links first, then the visible body text.
func ExtractContact(doc *goquery.Document) Contact {
	var c Contact

	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		lower := strings.ToLower(href)
		switch {
		case c.Email == "" && strings.HasPrefix(lower, "mailto:"):
			addr := href[len("mailto:"):]
			if i := strings.IndexByte(addr, '?'); i >= 0 {
				addr = addr[:i]
			}
			if unescaped, err := url.QueryUnescape(addr); err == nil {
				addr = unescaped
			}
			if m := emailRe.FindString(addr); m != "" && usableEmail(m) {
				c.Email = strings.ToLower(m)
			}
		case c.Phone == "" && strings.HasPrefix(lower, "tel:"):
			c.Phone = normalizePhone(href[len("tel:"):])
		}
		return c.Email == "" || c.Phone == ""
	})

	if c.Email != "" && c.Phone != "" {
		return c
	}

	body := doc.Find("body").Clone()
	body.Find("script, style, noscript, template").Remove()
	text := body.Text()

	if c.Email == "" {
		for _, m := range emailRe.FindAllString(text, -1) {
			if usableEmail(m) {
				c.Email = strings.ToLower(m)
				break
			}
		}
	}
	if c.Phone == "" {
		for _, m := range phoneRe.FindAllString(text, -1) {
			if p := normalizePhone(m); p != "" {
				c.Phone = p
				break
			}
		}
	}
	return c
}

func usableEmail(addr string) bool {
	lower := strings.ToLower(addr)
	for _, part := range ignoredEmailParts {
		if strings.Contains(lower, part) {
			return false
		}
	}
	for _, suffix := range assetSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return false
		}
	}
	return true
}

// normalizePhone keeps a leading + and the digits; fewer than 10 digits is rejected.
func normalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	if strings.HasPrefix(raw, "+") {
		b.WriteByte('+')
	}
	digits := 0
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			digits++
		}
	}
	if digits < 10 || digits > 15 {
		return ""
	}
	return b.String()
}
