package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tcg-nakama/internal/config"
	"tcg-nakama/internal/handler"
)

func TestSetupRoutesRegistersStorefrontSurface(t *testing.T) {
	cfg := &config.Config{}
	cfg.Admin.SessionSecret = "test-secret"

	s, err := NewServer(
		cfg,
		handler.NewStoreHandler(nil, nil, nil),
		handler.NewCartHandler(nil),
		handler.NewAdminHandler(config.Admin{}, nil, nil, nil, nil, nil, nil, nil),
		handler.NewOAuthHandler(nil),
	)
	require.NoError(t, err)

	registered := make(map[string]bool)
	for _, route := range s.echo.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		http.MethodGet + " /",
		http.MethodGet + " /search",
		http.MethodGet + " /filter",
		http.MethodGet + " /product/*",
		http.MethodGet + " /cart/drawer",
		http.MethodPost + " /cart/add",
		http.MethodPost + " /cart/update",
		http.MethodPost + " /cart/clear",
		http.MethodGet + " /admin",
		http.MethodGet + " /admin/analytics",
		http.MethodGet + " /oauth/callback",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}
