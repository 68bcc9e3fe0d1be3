// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess       = "success"
	KeyInternalError = "error.internal"
	KeyRateLimited   = "error.rate_limited"

	// Validation
	KeyValidationInvalid = "validation.invalid"
	KeyValidationBadID   = "validation.bad_id"

	// Brands
	KeyBrandAnalyzed     = "brand.analyzed"
	KeyBrandDeleted      = "brand.deleted"
	KeyBrandNotFound     = "brand.not_found"
	KeyBrandScrapeFailed = "brand.scrape_failed"

	// Health
	KeyHealthOK = "health.ok"
)
