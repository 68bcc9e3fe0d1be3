// internal/models/brand.go
package models

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/shopinsights/internal/utils"
)

// StoreProfile is everything extracted from a storefront, shared by brands and competitors.
type StoreProfile struct {
	Name              string         `json:"name" gorm:"size:255"`
	BrandContext      string         `json:"brand_context" gorm:"type:text"`
	ContactEmail      *string        `json:"contact_email" gorm:"size:255"`
	ContactPhone      *string        `json:"contact_phone" gorm:"size:50"`
	SocialHandles     SocialHandles  `json:"social_handles" gorm:"type:jsonb"`
	PrivacyPolicyURL  *string        `json:"privacy_policy_url" gorm:"size:1000"`
	PrivacyPolicyText *string        `json:"privacy_policy_text" gorm:"type:text"`
	ReturnPolicyURL   *string        `json:"return_policy_url" gorm:"size:1000"`
	ReturnPolicyText  *string        `json:"return_policy_text" gorm:"type:text"`
	RefundPolicyURL   *string        `json:"refund_policy_url" gorm:"size:1000"`
	RefundPolicyText  *string        `json:"refund_policy_text" gorm:"type:text"`
	FAQs              FAQs           `json:"faqs" gorm:"column:faqs;type:jsonb"`
	ImportantLinks    Links          `json:"important_links" gorm:"type:jsonb"`
	HeroProducts      HeroProducts   `json:"hero_products" gorm:"type:jsonb"`
	IsShopifyStore    bool           `json:"is_shopify_store" gorm:"index"`
	LastScraped       *time.Time     `json:"last_scraped"`
	ScrapingStatus    ScrapingStatus `json:"scraping_status" gorm:"type:varchar(20);default:'pending';index"`
	ScrapingErrors    *string        `json:"scraping_errors" gorm:"type:text"`
	SnapshotURL       *string        `json:"snapshot_url,omitempty" gorm:"size:1000"`
}

// PolicyCount is the number of policy categories that were found.
func (p StoreProfile) PolicyCount() int {
	n := 0
	for _, u := range []*string{p.PrivacyPolicyURL, p.ReturnPolicyURL, p.RefundPolicyURL} {
		if u != nil {
			n++
		}
	}
	return n
}

type Brand struct {
	BaseModel
	WebsiteURL string `json:"website_url" gorm:"size:500;uniqueIndex;not null"`
	Domain     string `json:"domain" gorm:"size:255;index;not null"`
	StoreProfile

	// Relationships
	Products    []Product    `json:"products,omitempty" gorm:"foreignKey:BrandID;constraint:OnDelete:CASCADE"`
	Competitors []Competitor `json:"competitors,omitempty" gorm:"foreignKey:BrandID;constraint:OnDelete:CASCADE"`
	Analyses    []Analysis   `json:"analyses,omitempty" gorm:"foreignKey:BrandID;constraint:OnDelete:CASCADE"`
}

func (b *Brand) BeforeSave(tx *gorm.DB) error {
	b.Domain = utils.ExtractDomain(b.WebsiteURL)
	if b.Domain == "" {
		return ErrInvalidWebsiteURL
	}
	return nil
}

type Competitor struct {
	BaseModel
	BrandID    uuid.UUID `json:"brand_id" gorm:"type:uuid;not null;index;<-:create"`
	WebsiteURL string    `json:"website_url" gorm:"size:500;not null"`
	Domain     string    `json:"domain" gorm:"size:255;index"`
	StoreProfile
	EstimatedRevenue *string `json:"estimated_revenue" gorm:"size:255"`
	MarketPosition   *string `json:"market_position" gorm:"type:text"`
	ProductCount     int     `json:"product_count"`
}

func (c *Competitor) BeforeSave(tx *gorm.DB) error {
	c.Domain = utils.ExtractDomain(c.WebsiteURL)
	return nil
}

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type FAQs []FAQ

func (f FAQs) Value() (driver.Value, error)  { return jsonValue(f, f == nil) }
func (f *FAQs) Scan(value interface{}) error { return scanJSON(value, f) }

type LinkKind string

const (
	LinkKindContact  LinkKind = "contact"
	LinkKindAbout    LinkKind = "about"
	LinkKindShipping LinkKind = "shipping"
	LinkKindReturns  LinkKind = "returns"
	LinkKindFAQ      LinkKind = "faq"
	LinkKindBlog     LinkKind = "blog"
	LinkKindTracking LinkKind = "tracking"
	LinkKindOther    LinkKind = "other"
)

type Link struct {
	Label string   `json:"label"`
	URL   string   `json:"url"`
	Kind  LinkKind `json:"kind"`
}

type Links []Link

func (l Links) Value() (driver.Value, error)  { return jsonValue(l, l == nil) }
func (l *Links) Scan(value interface{}) error { return scanJSON(value, l) }

// HeroProduct is a product linked from the storefront homepage.
type HeroProduct struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Handle   string `json:"handle"`
	ImageURL string `json:"image_url,omitempty"`
	Price    string `json:"price,omitempty"`
}

type HeroProducts []HeroProduct

func (h HeroProducts) Value() (driver.Value, error)  { return jsonValue(h, h == nil) }
func (h *HeroProducts) Scan(value interface{}) error { return scanJSON(value, h) }

// SocialHandles maps a platform name to the canonical profile URL.
type SocialHandles map[string]string

func (s SocialHandles) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	return jsonValue(s, false)
}

func (s *SocialHandles) Scan(value interface{}) error { return scanJSON(value, s) }
