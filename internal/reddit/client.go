package reddit

import (
	"net/http"
	"time"
)

const defaultMaxComments = 20

// DefaultSampleSubreddits are the general-interest communities sampled when
// every targeted search comes back empty.
var DefaultSampleSubreddits = []string{
	"programming",
	"technology",
	"science",
	"news",
	"worldnews",
}

// Client searches Reddit and fetches threads with host fallback.
type Client struct {
	fetcher     *Fetcher
	tokens      *TokenCache
	sampleSubs  []string
	maxComments int
}

// Config holds configuration for the Reddit client.
type Config struct {
	ClientID     string
	ClientSecret string
	UserAgent    string

	// ProxyURL routes listing requests through a prefix proxy when set.
	ProxyURL string

	Timeout           time.Duration
	RequestsPerSecond float64
	SampleSubreddits  []string
	MaxComments       int

	// Overrides, mostly for tests.
	HTTPClient  Doer
	PublicBases []string
	OAuthBase   string
	AuthURL     string
}

// New creates a Reddit client. Credentials are optional; without them every
// call goes to the public hosts.
func New(cfg Config) *Client {
	var transport Doer = cfg.HTTPClient
	if transport == nil {
		transport = &http.Client{}
	}

	tokens := NewTokenCache(TokenConfig{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		UserAgent:    cfg.UserAgent,
		AuthURL:      cfg.AuthURL,
		Client:       transport,
		Timeout:      cfg.Timeout,
	})

	// Only anonymous public-host requests go through the proxy.
	listingTransport := transport
	if cfg.ProxyURL != "" {
		listingTransport = &ProxyDoer{Prefix: cfg.ProxyURL, Next: transport}
	}

	fetcher := NewFetcher(FetcherConfig{
		Client:            listingTransport,
		OAuthClient:       transport,
		Tokens:            tokens,
		PublicBases:       cfg.PublicBases,
		OAuthBase:         cfg.OAuthBase,
		UserAgent:         cfg.UserAgent,
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})

	subs := cfg.SampleSubreddits
	if len(subs) == 0 {
		subs = DefaultSampleSubreddits
	}

	maxComments := cfg.MaxComments
	if maxComments <= 0 {
		maxComments = defaultMaxComments
	}

	return &Client{
		fetcher:     fetcher,
		tokens:      tokens,
		sampleSubs:  subs,
		maxComments: maxComments,
	}
}

// Health returns per-host health for the listing hosts.
func (c *Client) Health() *Health {
	return c.fetcher.Health()
}

// Authenticated reports whether client credentials are configured.
func (c *Client) Authenticated() bool {
	return c.tokens.Configured()
}
