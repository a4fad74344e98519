package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tcg-nakama/internal/client"
	"tcg-nakama/internal/config"
)

const stateTTL = 10 * time.Minute

// OAuthService drives the Shopify Admin OAuth flow and holds the resulting
// access token for the admin analytics features.
type OAuthService interface {
	AuthorizeURL() (string, error)
	HandleCallback(ctx context.Context, code, state string) error
	Token() string
	Connected() bool
}

type oauthServiceImpl struct {
	adminClient client.AdminClient
	cfg         config.Shopify

	mu     sync.Mutex
	states map[string]time.Time
	token  string
}

func NewOAuthService(adminClient client.AdminClient, cfg config.Shopify) OAuthService {
	return &oauthServiceImpl{
		adminClient: adminClient,
		cfg:         cfg,
		states:      make(map[string]time.Time),
		token:       cfg.AdminToken,
	}
}

// shopName extracts "tcg-nakama-2" from "https://tcg-nakama-2.myshopify.com".
func shopName(storeURL string) string {
	if !strings.Contains(storeURL, "myshopify.com") {
		return ""
	}
	name := strings.TrimPrefix(storeURL, "https://")
	name = strings.TrimPrefix(name, "http://")
	name, _, _ = strings.Cut(name, ".myshopify.com")
	return name
}

func (s *oauthServiceImpl) AuthorizeURL() (string, error) {
	shop := shopName(s.cfg.StoreURL)
	if shop == "" {
		return "", fmt.Errorf("SHOPIFY_STORE_URL not configured")
	}

	state := uuid.NewString()
	s.mu.Lock()
	now := time.Now()
	for existing, issued := range s.states {
		if now.Sub(issued) > stateTTL {
			delete(s.states, existing)
		}
	}
	s.states[state] = now
	s.mu.Unlock()

	params := url.Values{}
	params.Set("client_id", s.cfg.APIKey)
	params.Set("scope", s.cfg.Scopes)
	params.Set("redirect_uri", s.cfg.RedirectURI)
	params.Set("state", state)

	return fmt.Sprintf("https://%s.myshopify.com/admin/oauth/authorize?%s", shop, params.Encode()), nil
}

func (s *oauthServiceImpl) HandleCallback(ctx context.Context, code, state string) error {
	s.mu.Lock()
	issued, ok := s.states[state]
	delete(s.states, state)
	s.mu.Unlock()

	if !ok || time.Since(issued) > stateTTL {
		return fmt.Errorf("invalid state parameter")
	}
	if code == "" {
		return fmt.Errorf("no authorization code received")
	}

	token, err := s.adminClient.ExchangeAuthCode(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange auth code: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *oauthServiceImpl) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *oauthServiceImpl) Connected() bool {
	return s.Token() != ""
}
