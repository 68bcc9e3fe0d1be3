package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const threeProductsPage = `{"products":[
	{"id": 101, "title": "Logo Tee", "handle": "logo-tee", "body_html": "<p>Soft <strong>cotton</strong> tee.</p>",
	 "vendor": "Example", "product_type": "Shirts", "tags": "cotton, summer",
	 "variants": [{"id": 1, "title": "S", "price": "19.99", "compare_at_price": "25.00", "sku": "TEE-S", "available": true},
	              {"id": 2, "title": "M", "price": "19.99", "available": false}],
	 "images": [{"src": "https://cdn.shopify.com/tee.jpg"}, {"src": "https://cdn.shopify.com/tee-back.jpg"}]},
	{"id": "102", "title": "Free Sticker", "handle": "free-sticker", "tags": ["promo"],
	 "variants": [{"id": 3, "title": "Default Title", "price": 0, "available": false}], "images": []},
	{"id": 103, "title": "Hoodie", "handle": "hoodie", "tags": null,
	 "variants": [{"id": 4, "title": "Default Title", "price": "49.50", "compare_at_price": null}]}
]}`

type CatalogReaderTestSuite struct {
	suite.Suite
	mux    *http.ServeMux
	server *httptest.Server
	reader *CatalogReader
}

func (suite *CatalogReaderTestSuite) SetupTest() {
	suite.mux = http.NewServeMux()
	suite.server = httptest.NewServer(suite.mux)
	suite.reader = NewCatalogReader(newTestFetcher(nil), 250, testLogger())
}

func (suite *CatalogReaderTestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *CatalogReaderTestSuite) servePages(pages ...string) {
	suite.mux.HandleFunc("/products.json", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		if page >= 1 && page <= len(pages) {
			fmt.Fprint(w, pages[page-1])
			return
		}
		fmt.Fprint(w, `{"products":[]}`)
	})
}

func (suite *CatalogReaderTestSuite) TestMapsProductsAndPrices() {
	suite.servePages(threeProductsPage)

	products, warnings, err := suite.reader.ReadCatalog(context.Background(), suite.server.URL+"/", 20)
	suite.Require().NoError(err)
	suite.Empty(warnings)
	suite.Require().Len(products, 3)

	expected := []string{"19.99", "0", "49.5"}
	for i, p := range products {
		suite.True(p.Price.Valid)
		suite.True(p.Price.Decimal.Equal(decimal.RequireFromString(expected[i])), p.Title)
		suite.False(p.Price.Decimal.IsNegative())
	}

	tee := products[0]
	suite.Equal("101", tee.ShopifyID)
	suite.Equal("Soft cotton tee.", tee.Description)
	suite.Equal([]string{"cotton", "summer"}, []string(tee.Tags))
	suite.Equal(suite.server.URL+"/products/logo-tee", tee.ProductURL)
	suite.Equal("https://cdn.shopify.com/tee.jpg", tee.FeaturedImage)
	suite.Len(tee.ImageURLs, 2)
	suite.True(tee.CompareAtPrice.Decimal.Equal(decimal.RequireFromString("25")))
	suite.True(tee.Available, "one variant in stock")
	suite.Len(tee.Variants, 2)
	suite.Equal("TEE-S", tee.Variants[0].SKU)

	sticker := products[1]
	suite.Equal("102", sticker.ShopifyID)
	suite.Equal([]string{"promo"}, []string(sticker.Tags))
	suite.False(sticker.Available)
	suite.Empty(sticker.FeaturedImage)

	hoodie := products[2]
	suite.Empty(hoodie.Tags)
	suite.False(hoodie.CompareAtPrice.Valid)
	suite.True(hoodie.Available, "defaults to available")
}

func (suite *CatalogReaderTestSuite) TestPaginatesUntilEmptyPage() {
	page := func(ids ...int) string {
		out := `{"products":[`
		for i, id := range ids {
			if i > 0 {
				out += ","
			}
			out += fmt.Sprintf(`{"id":%d,"title":"P%d","handle":"p%d","variants":[{"id":%d,"price":"1.00"}]}`, id, id, id, id)
		}
		return out + `]}`
	}
	suite.servePages(page(1, 2), page(3, 4), page(5))

	reader := NewCatalogReader(newTestFetcher(nil), 2, testLogger())
	products, _, err := reader.ReadCatalog(context.Background(), suite.server.URL, 20)
	suite.Require().NoError(err)
	suite.Len(products, 5)
}

func (suite *CatalogReaderTestSuite) TestStopsAtPageCeiling() {
	suite.servePages(`{"products":[{"id":1,"title":"A","handle":"a"}]}`, `{"products":[{"id":2,"title":"B","handle":"b"}]}`)

	reader := NewCatalogReader(newTestFetcher(nil), 1, testLogger())
	products, warnings, err := reader.ReadCatalog(context.Background(), suite.server.URL, 1)
	suite.Require().NoError(err)
	suite.Len(products, 1)
	suite.Require().Len(warnings, 1)
	suite.Contains(warnings[0].Message, "page ceiling")
}

func (suite *CatalogReaderTestSuite) TestShortLastPageAtCeilingIsNotWarned() {
	suite.servePages(threeProductsPage)

	products, warnings, err := suite.reader.ReadCatalog(context.Background(), suite.server.URL, 1)
	suite.Require().NoError(err)
	suite.Len(products, 3)
	suite.Empty(warnings)
}

func (suite *CatalogReaderTestSuite) TestOversizedPageIsReadAtSmallerPageSize() {
	description := strings.Repeat("x", 400)
	var (
		mu     sync.Mutex
		limits []int
	)
	suite.mux.HandleFunc("/products.json", func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		mu.Lock()
		limits = append(limits, limit)
		mu.Unlock()

		// 40 products in total, served in order
		var items []string
		for id := (page-1)*limit + 1; id <= page*limit && id <= 40; id++ {
			items = append(items, fmt.Sprintf(`{"id":%d,"title":"P%d","handle":"p%d","body_html":"%s","variants":[{"id":%d,"price":"5.00"}]}`, id, id, id, description, id))
		}
		fmt.Fprint(w, `{"products":[`+strings.Join(items, ",")+`]}`)
	})

	// one product is about 500 bytes, so a page of 40 does not fit but a page of 20 does
	fetcher := newTestFetcher(func(c *configOverrides) { c.maxBody = 12000 })
	reader := NewCatalogReader(fetcher, 40, testLogger())

	products, warnings, err := reader.ReadCatalog(context.Background(), suite.server.URL, 2)
	suite.Require().NoError(err)
	suite.Empty(warnings)
	suite.Len(products, 40)
	suite.Equal("1", products[0].ShopifyID)
	suite.Equal("40", products[39].ShopifyID)

	mu.Lock()
	defer mu.Unlock()
	suite.Equal([]int{40, 20, 20, 20}, limits)
}

func (suite *CatalogReaderTestSuite) TestPageTooLargeAtAnySizeKeepsStoreAsShopify() {
	huge := strings.Repeat("x", 5000)
	suite.mux.HandleFunc("/products.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"products":[{"id":1,"title":"A","handle":"a","body_html":"%s"}]}`, huge)
	})

	fetcher := newTestFetcher(func(c *configOverrides) { c.maxBody = 1000 })
	reader := NewCatalogReader(fetcher, 40, testLogger())

	products, warnings, err := reader.ReadCatalog(context.Background(), suite.server.URL, 2)
	suite.Require().NoError(err, "an oversized response still proves the endpoint exists")
	suite.Empty(products)
	suite.Require().Len(warnings, 1)
	suite.Contains(warnings[0].Message, "size limit")
}

func (suite *CatalogReaderTestSuite) TestRepeatedPageEndsPagination() {
	same := `{"products":[{"id":1,"title":"A","handle":"a"}]}`
	suite.servePages(same, same, same)

	products, _, err := suite.reader.ReadCatalog(context.Background(), suite.server.URL, 20)
	suite.Require().NoError(err)
	suite.Len(products, 1)
}

func (suite *CatalogReaderTestSuite) TestNegativeAndBadPricesAreNulled() {
	suite.servePages(`{"products":[
		{"id":1,"title":"Refund","handle":"refund","variants":[{"id":1,"price":"-5.00"}]},
		{"id":2,"title":"Weird","handle":"weird","variants":[{"id":2,"price":"call us"}]},
		{"id":3,"title":7,"handle":"bad-shape"}
	]}`)

	products, warnings, err := suite.reader.ReadCatalog(context.Background(), suite.server.URL, 20)
	suite.Require().NoError(err)
	suite.Require().Len(products, 2, "product with a numeric title is rejected")
	suite.False(products[0].Price.Valid)
	suite.False(products[1].Price.Valid)
	suite.Len(warnings, 3)
}

func (suite *CatalogReaderTestSuite) TestLaterPageFailureKeepsPartialCatalog() {
	calls := 0
	suite.mux.HandleFunc("/products.json", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, threeProductsPage)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	})

	products, warnings, err := suite.reader.ReadCatalog(context.Background(), suite.server.URL, 20)
	suite.Require().NoError(err)
	suite.Len(products, 3)
	suite.Require().Len(warnings, 1)
	suite.Equal("catalog", warnings[0].Field)
	suite.Equal(2, calls)
}

func TestCatalogReaderTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogReaderTestSuite))
}

func TestReadCatalogEndpointErrors(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		kind    EndpointErrorKind
	}{
		{"missing endpoint", func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) }, EndpointNotShopify},
		{"html instead of json", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html><body>Welcome</body></html>")
		}, EndpointMalformed},
		{"no products key", func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, `{"items":[]}`) }, EndpointMalformed},
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }, EndpointUnreachable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			reader := NewCatalogReader(newTestFetcher(nil), 250, testLogger())
			products, _, err := reader.ReadCatalog(context.Background(), srv.URL, 20)
			assert.Nil(t, products)

			var endpointErr *EndpointError
			require.ErrorAs(t, err, &endpointErr)
			assert.Equal(t, tc.kind, endpointErr.Kind)
		})
	}
}

func TestFlexTagsAndStrings(t *testing.T) {
	var tags flexTags
	require.NoError(t, tags.UnmarshalJSON([]byte(`" a, ,b "`)))
	assert.Equal(t, flexTags{"a", "b"}, tags)

	var s flexString
	require.NoError(t, s.UnmarshalJSON([]byte(`12.50`)))
	assert.Equal(t, flexString("12.50"), s)
	assert.Error(t, s.UnmarshalJSON([]byte(`{"x":1}`)))
}
