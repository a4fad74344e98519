package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// MarketListing is one PriceCharting search hit with its best known price.
type MarketListing struct {
	Name     string
	PriceUSD float64
}

type PriceChartingClient interface {
	Search(ctx context.Context, query string) ([]MarketListing, error)
}

type priceChartingClientImpl struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewPriceChartingClient(apiKey string) PriceChartingClient {
	return &priceChartingClientImpl{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: "https://www.pricecharting.com",
		apiKey:  apiKey,
	}
}

func (c *priceChartingClientImpl) Search(ctx context.Context, query string) ([]MarketListing, error) {
	reqURL := fmt.Sprintf("%s/api/products?t=%s&q=%s", c.baseURL, c.apiKey, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pricecharting request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pricecharting error %d", resp.StatusCode)
	}

	var data struct {
		Products []map[string]any `json:"products"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode pricecharting response: %w", err)
	}

	var listings []MarketListing
	for _, p := range data.Products {
		price, ok := bestPrice(p)
		if !ok {
			continue
		}
		name, _ := p["product-name"].(string)
		if name == "" {
			name = "?"
		}
		listings = append(listings, MarketListing{Name: name, PriceUSD: price})
	}
	return listings, nil
}

// bestPrice extracts the first positive price in loose > cib > new order.
// The API reports cents.
func bestPrice(product map[string]any) (float64, bool) {
	for _, key := range []string{"loose-price", "cib-price", "new-price"} {
		raw, ok := product[key]
		if !ok || raw == nil {
			continue
		}
		var cents float64
		switch v := raw.(type) {
		case float64:
			cents = v
		case string:
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil {
				continue
			}
			cents = parsed
		default:
			continue
		}
		if cents > 0 {
			return cents / 100, true
		}
	}
	return 0, false
}
