package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// FallbackUSDJPY is used when the rate service is unreachable.
const FallbackUSDJPY = 150.0

type FxClient interface {
	USDToJPY(ctx context.Context) (float64, error)
}

type fxClientImpl struct {
	httpClient *http.Client
	baseURL    string
}

func NewFxClient() FxClient {
	return &fxClientImpl{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: "https://api.frankfurter.dev",
	}
}

func (c *fxClientImpl) USDToJPY(ctx context.Context) (float64, error) {
	url := c.baseURL + "/v1/latest?base=USD&symbols=JPY"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("http new request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("frankfurter request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("frankfurter error %d", resp.StatusCode)
	}

	var data struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0, fmt.Errorf("decode frankfurter response: %w", err)
	}

	rate, ok := data.Rates["JPY"]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("frankfurter response missing JPY rate")
	}
	return rate, nil
}
