package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	defaultAuthURL = "https://www.reddit.com/api/v1/access_token"

	// tokenExpirySkew is how long before expiry a cached token is refreshed.
	tokenExpirySkew = 60 * time.Second

	defaultTokenTimeout = 8 * time.Second

	// defaultFailureBackoff is how long a failed exchange keeps callers
	// unauthenticated before the endpoint is tried again.
	defaultFailureBackoff = 30 * time.Second
)

// TokenSource yields an optional bearer token. ok is false when requests
// should go out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (token string, ok bool)
}

// TokenCache holds a single client-credentials token and refreshes it lazily.
type TokenCache struct {
	client       Doer
	authURL      string
	clientID     string
	clientSecret string
	userAgent    string
	timeout      time.Duration
	backoff      time.Duration
	now          func() time.Time

	mu          sync.Mutex
	token       string
	expiresAt   time.Time
	failedUntil time.Time

	group singleflight.Group
}

// TokenConfig holds configuration for the token cache.
type TokenConfig struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	AuthURL      string
	Client       Doer

	// Timeout bounds one token exchange.
	Timeout time.Duration
	// FailureBackoff is how long to skip the exchange after it fails.
	FailureBackoff time.Duration
}

// NewTokenCache creates a token cache. Without client credentials it always
// reports no token.
func NewTokenCache(cfg TokenConfig) *TokenCache {
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = defaultAuthURL
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTokenTimeout
	}

	backoff := cfg.FailureBackoff
	if backoff <= 0 {
		backoff = defaultFailureBackoff
	}

	return &TokenCache{
		client:       client,
		authURL:      authURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		userAgent:    cfg.UserAgent,
		timeout:      timeout,
		backoff:      backoff,
		now:          time.Now,
	}
}

// Configured reports whether client credentials are present.
func (c *TokenCache) Configured() bool {
	return c.clientID != "" && c.clientSecret != ""
}

// Token returns a valid cached token, refreshing it when missing or within
// 60 seconds of expiry. Refresh failures degrade to unauthenticated mode,
// and no exchange is attempted again until the failure backoff elapses.
func (c *TokenCache) Token(ctx context.Context) (string, bool) {
	if !c.Configured() {
		return "", false
	}

	if token, ok := c.cached(); ok {
		return token, true
	}
	if c.backingOff() {
		return "", false
	}

	v, err, _ := c.group.Do("token", func() (any, error) {
		// Another caller may have refreshed while we waited on the group.
		if token, ok := c.cached(); ok {
			return token, nil
		}
		token, err := c.refresh(ctx)
		if err != nil && ctx.Err() == nil {
			c.mu.Lock()
			c.failedUntil = c.now().Add(c.backoff)
			c.mu.Unlock()
		}
		return token, err
	})
	if err != nil {
		slog.Warn("reddit token refresh failed, continuing unauthenticated", "error", err)
		return "", false
	}

	return v.(string), true
}

func (c *TokenCache) cached() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Add(tokenExpirySkew).Before(c.expiresAt) {
		return c.token, true
	}
	return "", false
}

func (c *TokenCache) backingOff() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now().Before(c.failedUntil)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
}

func (c *TokenCache) refresh(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	data := url.Values{}
	data.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL,
		strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("reddit auth failed (status %d): %s", resp.StatusCode, string(body))
	}

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", errors.New("token response has no access_token")
	}

	c.mu.Lock()
	c.token = tokenResp.AccessToken
	c.expiresAt = c.now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	c.failedUntil = time.Time{}
	c.mu.Unlock()

	slog.Debug("obtained reddit access token", "expires_in", tokenResp.ExpiresIn)

	return tokenResp.AccessToken, nil
}
