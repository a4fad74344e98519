package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tcg-nakama/internal/model"
)

const adminAPIVersion = "2024-01"

// AdminClient talks to the Shopify Admin REST API. It needs an access token
// from the OAuth flow (or SHOPIFY_ADMIN_TOKEN).
type AdminClient interface {
	GetOrders(ctx context.Context, accessToken string, limit int) ([]model.Order, error)
	ExchangeAuthCode(ctx context.Context, code string) (string, error)
}

type adminClientImpl struct {
	httpClient *http.Client
	storeURL   string
	apiKey     string
	apiSecret  string
}

func NewAdminClient(storeURL, apiKey, apiSecret string) AdminClient {
	return &adminClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		storeURL:  strings.TrimRight(storeURL, "/"),
		apiKey:    apiKey,
		apiSecret: apiSecret,
	}
}

func (c *adminClientImpl) GetOrders(ctx context.Context, accessToken string, limit int) ([]model.Order, error) {
	url := fmt.Sprintf("%s/admin/api/%s/orders.json?status=any&limit=%d", c.storeURL, adminAPIVersion, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shopify admin request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("shopify admin error %d: %s", resp.StatusCode, string(b))
	}

	var result struct {
		Orders []model.Order `json:"orders"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode orders response: %w", err)
	}
	return result.Orders, nil
}

// ExchangeAuthCode swaps an OAuth authorization code for an Admin API access
// token.
func (c *adminClientImpl) ExchangeAuthCode(ctx context.Context, code string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"client_id":     c.apiKey,
		"client_secret": c.apiSecret,
		"code":          code,
	})
	if err != nil {
		return "", fmt.Errorf("marshal token request: %w", err)
	}

	url := c.storeURL + "/admin/oauth/access_token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(payload)))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token exchange failed %d: %s", resp.StatusCode, string(b))
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("token exchange returned empty token")
	}
	return result.AccessToken, nil
}
