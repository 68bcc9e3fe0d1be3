// internal/scraper/social.go
package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var socialHosts = map[string]string{
	"instagram.com": "instagram",
	"facebook.com":  "facebook",
	"fb.com":        "facebook",
	"twitter.com":   "twitter",
	"x.com":         "twitter",
	"tiktok.com":    "tiktok",
	"youtube.com":   "youtube",
	"youtu.be":      "youtube",
	"pinterest.com": "pinterest",
	"linkedin.com":  "linkedin",
}

// path fragments of share buttons, which point at the platform but not at the brand
var sharePaths = []string{"/sharer", "/share", "/intent/", "/pin/create", "/dialog/", "/hashtag/", "/watch"}

// ExtractSocial maps platform to the canonical profile URL. The first link per platform
// in document order wins.
func ExtractSocial(doc *goquery.Document) map[string]string {
	handles := make(map[string]string)

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		platform, profile, ok := socialProfile(a.AttrOr("href", ""))
		if !ok {
			return
		}
		if _, seen := handles[platform]; !seen {
			handles[platform] = profile
		}
	})

	return handles
}

func socialProfile(href string) (platform, profile string, ok bool) {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil || u.Host == "" {
		return "", "", false
	}

	host := strings.ToLower(u.Hostname())
	for _, prefix := range []string{"www.", "m.", "mobile.", "web."} {
		host = strings.TrimPrefix(host, prefix)
	}

	platform, known := socialHosts[host]
	if !known {
		return "", "", false
	}

	path := strings.TrimRight(u.EscapedPath(), "/")
	if path == "" {
		return "", "", false
	}
	lowerPath := strings.ToLower(path)
	for _, share := range sharePaths {
		if strings.Contains(lowerPath, share) {
			return "", "", false
		}
	}

	return platform, "https://" + host + path, true
}
