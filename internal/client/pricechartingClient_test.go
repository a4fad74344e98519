package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBestPricePrefersLoose(t *testing.T) {
	price, ok := bestPrice(map[string]any{
		"loose-price": 30000.0,
		"cib-price":   45000.0,
		"new-price":   60000.0,
	})
	require.True(t, ok)
	assert.Equal(t, 300.0, price, "prices arrive in cents")
}

func TestBestPriceFallsThroughZeroes(t *testing.T) {
	price, ok := bestPrice(map[string]any{
		"loose-price": 0.0,
		"cib-price":   nil,
		"new-price":   "12050",
	})
	require.True(t, ok)
	assert.Equal(t, 120.5, price)
}

func TestBestPriceNoUsablePrice(t *testing.T) {
	_, ok := bestPrice(map[string]any{"loose-price": "garbage"})
	assert.False(t, ok)

	_, ok = bestPrice(map[string]any{})
	assert.False(t, ok)
}

func TestSearchParsesListings(t *testing.T) {
	var gotQuery, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotToken = r.URL.Query().Get("t")
		w.Write([]byte(`{"products":[
		  {"product-name":"Charizard VMAX 020","loose-price":30000},
		  {"product-name":"Charizard VMAX Alt Art","loose-price":90000},
		  {"product-name":"No Price Card"}
		]}`))
	}))
	defer srv.Close()

	client := &priceChartingClientImpl{
		httpClient: srv.Client(),
		baseURL:    srv.URL,
		apiKey:     "apikey",
	}

	listings, err := client.Search(context.Background(), "Charizard VMAX 020")
	require.NoError(t, err)
	assert.Equal(t, "Charizard VMAX 020", gotQuery)
	assert.Equal(t, "apikey", gotToken)

	require.Len(t, listings, 2, "listings without prices are dropped")
	assert.Equal(t, "Charizard VMAX 020", listings[0].Name)
	assert.Equal(t, 300.0, listings[0].PriceUSD)
}

func TestSearchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	client := &priceChartingClientImpl{httpClient: srv.Client(), baseURL: srv.URL, apiKey: "k"}
	_, err := client.Search(context.Background(), "anything")
	assert.Error(t, err)
}
