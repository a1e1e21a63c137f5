package reddit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultOAuthBase      = "https://oauth.reddit.com"
	defaultAttemptTimeout = 8 * time.Second
	defaultRPS            = 5
	maxBodyBytes          = 8 << 20
)

// DefaultPublicBases are the public hosts serving the same JSON API, in
// fallback order.
var DefaultPublicBases = []string{
	"https://www.reddit.com",
	"https://old.reddit.com",
	"https://reddit.com",
}

// Request is one path and query string to try against a base host.
type Request struct {
	Path   string
	Params url.Values
}

// AcceptFunc validates a response body and captures the decoded result.
// A non-nil error rejects the response and moves on to the next candidate.
type AcceptFunc func(body []byte) error

// Fetcher issues GETs against an ordered list of hosts and returns on the
// first response its caller accepts.
type Fetcher struct {
	client      Doer
	oauthClient Doer
	tokens      TokenSource
	publicBases []string
	oauthBase   string
	userAgent   string
	timeout     time.Duration
	limiter     *rate.Limiter
	health      *Health
}

// FetcherConfig holds configuration for the fetcher.
type FetcherConfig struct {
	Client            Doer
	OAuthClient       Doer // authenticated requests; defaults to Client, never a third-party proxy
	Tokens            TokenSource
	PublicBases       []string
	OAuthBase         string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64 // 0 uses the default, negative disables pacing
	Health            *Health
}

// NewFetcher creates a fetcher with defaults for unset fields.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}

	oauthClient := cfg.OAuthClient
	if oauthClient == nil {
		oauthClient = client
	}

	bases := cfg.PublicBases
	if len(bases) == 0 {
		bases = DefaultPublicBases
	}

	oauthBase := cfg.OAuthBase
	if oauthBase == "" {
		oauthBase = defaultOAuthBase
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultAttemptTimeout
	}

	rps := cfg.RequestsPerSecond
	if rps == 0 {
		rps = defaultRPS
	}
	limiter := rate.NewLimiter(rate.Limit(rps), int(rps)+1)
	if rps < 0 {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}

	health := cfg.Health
	if health == nil {
		health = NewHealth()
	}

	return &Fetcher{
		client:      client,
		oauthClient: oauthClient,
		tokens:      cfg.Tokens,
		publicBases: bases,
		oauthBase:   strings.TrimRight(oauthBase, "/"),
		userAgent:   cfg.UserAgent,
		timeout:     timeout,
		limiter:     limiter,
		health:      health,
	}
}

// Health returns the per-host health tracker.
func (f *Fetcher) Health() *Health {
	return f.health
}

type endpoint struct {
	base  string
	token string
}

// endpoints resolves the candidate hosts for one call. With a token the OAuth
// host goes first; the public hosts always follow, unauthenticated.
func (f *Fetcher) endpoints(ctx context.Context) []endpoint {
	eps := make([]endpoint, 0, len(f.publicBases)+1)
	if f.tokens != nil {
		if token, ok := f.tokens.Token(ctx); ok {
			eps = append(eps, endpoint{base: f.oauthBase, token: token})
		}
	}
	for _, base := range f.publicBases {
		eps = append(eps, endpoint{base: strings.TrimRight(base, "/")})
	}
	return eps
}

// Fetch tries one request against every candidate host in order.
func (f *Fetcher) Fetch(ctx context.Context, path string, params url.Values, accept AcceptFunc) error {
	return f.FetchAny(ctx, []Request{{Path: path, Params: params}}, accept)
}

// FetchAny tries each request against each host, host-major, and stops at
// the first accepted response. When every combination fails the returned
// error wraps ErrExhausted and every per-attempt error.
func (f *Fetcher) FetchAny(ctx context.Context, reqs []Request, accept AcceptFunc) error {
	var errs []error

	for _, ep := range f.endpoints(ctx) {
		for _, r := range reqs {
			if err := ctx.Err(); err != nil {
				return err
			}

			rawURL := buildURL(ep.base, r)
			err := f.try(ctx, ep, rawURL, accept)
			if err == nil {
				return nil
			}

			slog.Warn("reddit endpoint failed", "url", rawURL, "error", err)
			errs = append(errs, &AttemptError{URL: rawURL, Err: err})
		}
	}

	return fmt.Errorf("%w: %w", ErrExhausted, errors.Join(errs...))
}

func (f *Fetcher) try(ctx context.Context, ep endpoint, rawURL string, accept AcceptFunc) error {
	host := hostOf(ep.base)

	body, err := f.get(ctx, ep, rawURL)
	if err != nil {
		requestsTotal.WithLabelValues(host, outcomeTransport).Inc()
		f.health.RecordFailure(host, err)
		return err
	}

	if err := accept(body); err != nil {
		requestsTotal.WithLabelValues(host, outcomeRejected).Inc()
		// The host answered; only the payload was unusable.
		f.health.RecordSuccess(host)
		return err
	}

	requestsTotal.WithLabelValues(host, outcomeOK).Inc()
	f.health.RecordSuccess(host)
	return nil
}

func (f *Fetcher) get(ctx context.Context, ep endpoint, rawURL string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	client := f.client
	if ep.token != "" {
		req.Header.Set("Authorization", "Bearer "+ep.token)
		client = f.oauthClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// AttemptError records why one URL was not accepted.
type AttemptError struct {
	URL string
	Err error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("%s: %v", e.URL, e.Err)
}

func (e *AttemptError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx upstream response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

func buildURL(base string, r Request) string {
	path := r.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(r.Params) == 0 {
		return base + path
	}
	return base + path + "?" + r.Params.Encode()
}

func hostOf(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return base
	}
	return u.Host
}
