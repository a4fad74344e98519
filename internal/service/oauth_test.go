package service

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tcg-nakama/internal/config"
)

func testShopifyConfig(adminToken string) config.Shopify {
	return config.Shopify{
		StoreURL:    "https://tcg-nakama-2.myshopify.com",
		APIKey:      "key123",
		APISecret:   "secret456",
		Scopes:      "read_products,read_orders",
		RedirectURI: "http://localhost:8001/oauth/callback",
		AdminToken:  adminToken,
	}
}

func TestShopName(t *testing.T) {
	assert.Equal(t, "tcg-nakama-2", shopName("https://tcg-nakama-2.myshopify.com"))
	assert.Equal(t, "demo", shopName("http://demo.myshopify.com/"))
	assert.Empty(t, shopName("https://example.com"))
	assert.Empty(t, shopName(""))
}

func TestAuthorizeURLCarriesStateAndScopes(t *testing.T) {
	svc := NewOAuthService(&fakeAdminClient{}, testShopifyConfig(""))

	authURL, err := svc.AuthorizeURL()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(authURL, "https://tcg-nakama-2.myshopify.com/admin/oauth/authorize?"))

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, "key123", q.Get("client_id"))
	assert.Equal(t, "read_products,read_orders", q.Get("scope"))
	assert.Equal(t, "http://localhost:8001/oauth/callback", q.Get("redirect_uri"))
	assert.NotEmpty(t, q.Get("state"))
}

func TestAuthorizeURLFailsWithoutStoreURL(t *testing.T) {
	cfg := testShopifyConfig("")
	cfg.StoreURL = ""
	svc := NewOAuthService(&fakeAdminClient{}, cfg)

	_, err := svc.AuthorizeURL()
	assert.Error(t, err)
}

func TestHandleCallbackExchangesCode(t *testing.T) {
	adminClient := &fakeAdminClient{token: "shpat_new"}
	svc := NewOAuthService(adminClient, testShopifyConfig(""))

	authURL, err := svc.AuthorizeURL()
	require.NoError(t, err)
	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")

	assert.False(t, svc.Connected())
	require.NoError(t, svc.HandleCallback(context.Background(), "code-abc", state))
	assert.True(t, svc.Connected())
	assert.Equal(t, "shpat_new", svc.Token())
}

func TestHandleCallbackRejectsUnknownState(t *testing.T) {
	svc := NewOAuthService(&fakeAdminClient{token: "shpat_new"}, testShopifyConfig(""))

	err := svc.HandleCallback(context.Background(), "code-abc", "forged-state")
	assert.Error(t, err)
	assert.False(t, svc.Connected())
}

func TestHandleCallbackStateIsSingleUse(t *testing.T) {
	svc := NewOAuthService(&fakeAdminClient{token: "shpat_new"}, testShopifyConfig(""))

	authURL, err := svc.AuthorizeURL()
	require.NoError(t, err)
	parsed, _ := url.Parse(authURL)
	state := parsed.Query().Get("state")

	require.NoError(t, svc.HandleCallback(context.Background(), "code", state))
	assert.Error(t, svc.HandleCallback(context.Background(), "code", state))
}

func TestPreIssuedAdminTokenSkipsOAuth(t *testing.T) {
	svc := NewOAuthService(&fakeAdminClient{}, testShopifyConfig("shpat_preissued"))
	assert.True(t, svc.Connected())
	assert.Equal(t, "shpat_preissued", svc.Token())
}
