// internal/models/product.go
package models

import (
	"database/sql/driver"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	BaseModel
	BrandID           uuid.UUID           `json:"brand_id" gorm:"type:uuid;not null;index;<-:create"`
	ShopifyID         string              `json:"shopify_id" gorm:"size:50;index"`
	Handle            string              `json:"handle" gorm:"size:255;index"`
	Title             string              `json:"title" gorm:"size:500;not null"`
	Description       string              `json:"description" gorm:"type:text"`
	Vendor            string              `json:"vendor" gorm:"size:255"`
	ProductType       string              `json:"product_type" gorm:"size:255;index"`
	Tags              pq.StringArray      `json:"tags" gorm:"type:text[]"`
	Price             decimal.NullDecimal `json:"price" gorm:"type:numeric(10,2)"`
	CompareAtPrice    decimal.NullDecimal `json:"compare_at_price" gorm:"type:numeric(10,2)"`
	ProductURL        string              `json:"product_url" gorm:"size:1000"`
	ImageURLs         pq.StringArray      `json:"image_urls" gorm:"column:image_urls;type:text[]"`
	FeaturedImage     string              `json:"featured_image" gorm:"size:1000"`
	Available         bool                `json:"available"`
	InventoryQuantity *int                `json:"inventory_quantity"`
	Variants          Variants            `json:"variants" gorm:"type:jsonb"`
	SEOTitle          *string             `json:"seo_title" gorm:"column:seo_title;size:500"`
	SEODescription    *string             `json:"seo_description" gorm:"column:seo_description;type:text"`
	IsHeroProduct     bool                `json:"is_hero_product" gorm:"index"`
}

func (p *Product) BeforeSave(tx *gorm.DB) error {
	if isNegative(p.Price) || isNegative(p.CompareAtPrice) {
		return ErrNegativePrice
	}
	for _, v := range p.Variants {
		if isNegative(v.Price) || isNegative(v.CompareAtPrice) {
			return ErrNegativePrice
		}
	}
	return nil
}

func isNegative(d decimal.NullDecimal) bool {
	return d.Valid && d.Decimal.IsNegative()
}

type Variant struct {
	ID                string              `json:"id"`
	Title             string              `json:"title"`
	Price             decimal.NullDecimal `json:"price"`
	CompareAtPrice    decimal.NullDecimal `json:"compare_at_price"`
	SKU               string              `json:"sku,omitempty"`
	Available         bool                `json:"available"`
	InventoryQuantity *int                `json:"inventory_quantity,omitempty"`
}

type Variants []Variant

func (v Variants) Value() (driver.Value, error)  { return jsonValue(v, v == nil) }
func (v *Variants) Scan(value interface{}) error { return scanJSON(value, v) }
