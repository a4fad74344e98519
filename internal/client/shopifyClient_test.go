package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tcg-nakama/internal/dto"
	"tcg-nakama/internal/model"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*shopifyClientImpl, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &shopifyClientImpl{
		httpClient:      srv.Client(),
		storeURL:        srv.URL,
		storefrontToken: "test-token",
	}, srv
}

func graphqlResponse(data string) string {
	return `{"data":` + data + `}`
}

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

const productJSON = `{
  "id": "gid://shopify/Product/7001",
  "title": "Charizard VMAX (SSR)",
  "handle": "charizard-vmax-ssr",
  "tags": ["set:Shiny Star V", "rarity:Ultra Rare", "number:#308"],
  "createdAt": "2026-08-01T09:00:00Z",
  "totalInventory": 2,
  "featuredImage": {"url": "https://cdn.example/charizard.jpg"},
  "images": {"edges": [{"node": {"url": "https://cdn.example/charizard.jpg"}}, {"node": {"url": "https://cdn.example/back.jpg"}}]},
  "variants": {"edges": [{"node": {
    "id": "gid://shopify/ProductVariant/8001",
    "title": "Default",
    "availableForSale": true,
    "price": {"amount": "45000.0", "currencyCode": "JPY"}
  }}]}
}`

func TestGetProductsMapsWireFormat(t *testing.T) {
	var gotToken string
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Shopify-Storefront-Access-Token")
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/api/2024-01/graphql.json")
		w.Write([]byte(graphqlResponse(`{"products":{"edges":[{"node":` + productJSON + `}]}}`)))
	})

	products, err := client.GetProducts(context.Background(), dto.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "test-token", gotToken)

	p := products[0]
	assert.Equal(t, "gid://shopify/Product/7001", p.ID)
	assert.Equal(t, "7001", p.SafeID)
	assert.Equal(t, "gid://shopify/ProductVariant/8001", p.VariantID)
	assert.Equal(t, "Shiny Star V", p.Set)
	assert.Equal(t, "Ultra Rare", p.Rarity)
	assert.Equal(t, "#308", p.CardNumber)
	assert.True(t, p.Price.Equal(decimalFromString(t, "45000.0")))
	assert.True(t, p.Available)
	assert.Equal(t, 2, p.Stock)
	assert.Len(t, p.Images, 2)
	assert.Equal(t, time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC), p.CreatedAt.UTC())
}

func TestGetProductsSendsCompiledSearchQuery(t *testing.T) {
	var gotQuery string
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Variables map[string]string `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		gotQuery = payload.Variables["query"]
		w.Write([]byte(graphqlResponse(`{"products":{"edges":[]}}`)))
	})

	_, err := client.GetProducts(context.Background(), dto.ProductFilter{Query: "charizard", Rarity: "Ultra Rare"})
	require.NoError(t, err)
	assert.Equal(t, `(title:*charizard*) AND (tag:"rarity:Ultra Rare")`, gotQuery)
}

func TestQueryToleratesPartialErrors(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"products":{"edges":[]}},"errors":[{"message":"throttled"}]}`))
	})

	_, err := client.GetProducts(context.Background(), dto.ProductFilter{})
	assert.NoError(t, err, "partial errors with data present must not fail")
}

func TestQueryFailsWhenOnlyErrors(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":null,"errors":[{"message":"invalid token"}]}`))
	})

	_, err := client.GetProducts(context.Background(), dto.ProductFilter{})
	assert.Error(t, err)
}

func TestQueryFailsOnHTTPError(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := client.GetProducts(context.Background(), dto.ProductFilter{})
	assert.Error(t, err)
}

func TestUnconfiguredClientReturnsErrNotConfigured(t *testing.T) {
	client := &shopifyClientImpl{httpClient: http.DefaultClient}
	assert.False(t, client.Configured())

	_, err := client.GetProducts(context.Background(), dto.ProductFilter{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGetProductNotFound(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(graphqlResponse(`{"product":null}`)))
	})

	product, err := client.GetProduct(context.Background(), "gid://shopify/Product/404")
	require.NoError(t, err)
	assert.Nil(t, product)
}

func TestCreateCartMapsLines(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(graphqlResponse(`{"cartCreate":{"cart":{
		  "id": "gid://shopify/Cart/c1",
		  "checkoutUrl": "https://shop.example/checkout/c1",
		  "totalQuantity": 2,
		  "lines": {"edges": [{"node": {
		    "id": "gid://shopify/CartLine/l1",
		    "quantity": 2,
		    "merchandise": {
		      "id": "gid://shopify/ProductVariant/8001",
		      "title": "Default",
		      "price": {"amount": "45000.0"},
		      "product": {
		        "title": "Charizard VMAX",
		        "tags": ["set:Shiny Star V", "rarity:Ultra Rare"],
		        "featuredImage": {"url": "https://cdn.example/charizard.jpg"}
		      }
		    }
		  }}]}
		}}}`)))
	})

	cart, err := client.CreateCart(context.Background(), "gid://shopify/ProductVariant/8001", 2)
	require.NoError(t, err)
	require.NotNil(t, cart)

	assert.Equal(t, "gid://shopify/Cart/c1", cart.ID)
	assert.Equal(t, "https://shop.example/checkout/c1", cart.CheckoutURL)
	assert.Equal(t, 2, cart.TotalQuantity)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "Charizard VMAX", cart.Lines[0].Title)
	assert.Equal(t, "Shiny Star V", cart.Lines[0].Set)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
}

func TestMetaFromTagsDefaults(t *testing.T) {
	meta := model.MetaFromTags(nil)
	assert.Equal(t, "Unknown Set", meta.Set)
	assert.Equal(t, "Common", meta.Rarity)
	assert.Equal(t, "#000", meta.CardNumber)

	meta = model.MetaFromTags([]string{"set:Base Set", "rarity:Rare", "number:#004", "misc"})
	assert.Equal(t, "Base Set", meta.Set)
	assert.Equal(t, "Rare", meta.Rarity)
	assert.Equal(t, "#004", meta.CardNumber)
}
