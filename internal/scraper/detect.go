// internal/scraper/detect.go
package scraper

import (
	"bytes"
	"net/http"
)

var shopifyBodyMarkers = []string{
	"cdn.shopify.com",
	"Shopify.theme",
	"myshopify.com",
	"window.Shopify",
	"shopify-section",
}

// DetectShopifyMarkers lists the Shopify fingerprints present in a homepage response.
func DetectShopifyMarkers(body []byte, headers http.Header) []string {
	var found []string
	for _, marker := range shopifyBodyMarkers {
		if bytes.Contains(body, []byte(marker)) {
			found = append(found, marker)
		}
	}
	for _, h := range []string{"X-ShopId", "X-Shopify-Stage"} {
		if headers != nil && headers.Get(h) != "" {
			found = append(found, h)
		}
	}
	return found
}
