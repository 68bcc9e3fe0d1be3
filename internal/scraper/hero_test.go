package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/shopinsights/internal/models"
)

func TestExtractHeroCandidates(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<div class="product-card">
			<a href="/products/wool-runner?variant=1"><img src="//cdn.shopify.com/a.jpg" alt="Wool Runner"></a>
			<span class="price">$98</span>
		</div>
		<div class="product-card"><a href="/collections/all/products/Tree-Dasher">Tree Dasher</a></div>
		<a href="/products/wool-runner">Duplicate</a>
		<a href="https://other.test/products/foreign">Foreign store</a>
	</body></html>`)

	heroes := ExtractHeroCandidates(doc, mustURL(t, "https://shop.test/"), 10)
	require.Len(t, heroes, 2)

	assert.Equal(t, models.HeroProduct{
		Title:    "Wool Runner",
		URL:      "https://shop.test/products/wool-runner",
		Handle:   "wool-runner",
		ImageURL: "https://cdn.shopify.com/a.jpg",
		Price:    "$98",
	}, heroes[0])
	assert.Equal(t, "tree-dasher", heroes[1].Handle)
	assert.Equal(t, "Tree Dasher", heroes[1].Title)
}

func TestMarkHeroProducts(t *testing.T) {
	products := []models.Product{
		{Handle: "wool-runner-2", Title: "Wool Runner 2"},
		{Handle: "wool-runner", Title: "Wool Runner"},
		{Handle: "tree-dasher-limited", Title: "Tree Dasher Limited"},
		{Handle: "tree-dasher-limited-edition", Title: "Tree Dasher LE"},
		{Handle: "sock-basic", Title: "Cozy Sock"},
	}
	candidates := []models.HeroProduct{
		{Handle: "wool-runner"},
		{Handle: "tree-dasher"},
		{Handle: "unknown", Title: "cozy sock"},
	}

	assert.Equal(t, 3, MarkHeroProducts(products, candidates))
	assert.False(t, products[0].IsHeroProduct, "exact handle beats substring")
	assert.True(t, products[1].IsHeroProduct)
	assert.False(t, products[2].IsHeroProduct)
	assert.True(t, products[3].IsHeroProduct, "longest loose match")
	assert.True(t, products[4].IsHeroProduct, "title match")
}

func TestMarkHeroProductsTieBreaksOnCatalogOrder(t *testing.T) {
	products := []models.Product{
		{Handle: "tee-red"},
		{Handle: "tee-blu"},
	}
	assert.Equal(t, 1, MarkHeroProducts(products, []models.HeroProduct{{Handle: "tee"}}))
	assert.True(t, products[0].IsHeroProduct)
	assert.False(t, products[1].IsHeroProduct)
}

func TestDetectShopifyMarkers(t *testing.T) {
	body := []byte(`<script src="https://cdn.shopify.com/s/files/theme.js"></script><div class="shopify-section">`)
	markers := DetectShopifyMarkers(body, nil)
	assert.ElementsMatch(t, []string{"cdn.shopify.com", "shopify-section"}, markers)
	assert.Empty(t, DetectShopifyMarkers([]byte("<html></html>"), nil))
}
