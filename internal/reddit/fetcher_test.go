package reddit

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens struct {
	token string
}

func (s staticTokens) Token(context.Context) (string, bool) {
	return s.token, s.token != ""
}

func acceptNonEmpty(got *string) AcceptFunc {
	return func(body []byte) error {
		if len(body) == 0 {
			return errEmptyListing
		}
		*got = string(body)
		return nil
	}
}

func TestFetcher_SetsHeaders(t *testing.T) {
	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "threadsmith-test/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "no-store", r.Header.Get("Cache-Control"))
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "/r/golang/hot.json", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte("ok"))
	})

	f := NewFetcher(FetcherConfig{
		PublicBases:       []string{srv.URL},
		UserAgent:         "threadsmith-test/1.0",
		RequestsPerSecond: -1,
	})

	var got string
	err := f.Fetch(context.Background(), "/r/golang/hot.json", url.Values{"limit": {"5"}}, acceptNonEmpty(&got))
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestFetcher_FallsBackOnRejectedBody(t *testing.T) {
	empty := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, listingOf())
	})
	full := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, listingOf(post("a", "Fallback works", 1, 1)))
	})

	c := newTestClient(empty.URL, full.URL)
	posts, err := c.fetchListing(context.Background(), []Request{{Path: "/r/test/hot.json"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"Fallback works"}, titles(posts))
	assert.Equal(t, int32(1), empty.hits.Load())
	assert.Equal(t, int32(1), full.hits.Load())

	// The empty host answered, so it stays healthy.
	status := c.Health().Status(hostOf(empty.URL))
	require.NotNil(t, status)
	assert.True(t, status.Healthy)
}

func TestFetcher_HostMajorOrder(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			order = append(order, name+" "+r.URL.Path)
			mu.Unlock()
			http.Error(w, "down", http.StatusServiceUnavailable)
		}
	}
	first := newUpstream(t, record("first"))
	second := newUpstream(t, record("second"))

	f := NewFetcher(FetcherConfig{PublicBases: []string{first.URL, second.URL}, RequestsPerSecond: -1})
	err := f.FetchAny(context.Background(), []Request{{Path: "/a.json"}, {Path: "/b.json"}}, func([]byte) error { return nil })
	require.ErrorIs(t, err, ErrExhausted)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"first /a.json",
		"first /b.json",
		"second /a.json",
		"second /b.json",
	}, order)
}

func TestFetcher_BearerOnlyOnOAuthHost(t *testing.T) {
	oauth := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})
	public := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("public"))
	})

	f := NewFetcher(FetcherConfig{
		Tokens:            staticTokens{token: "secret-token"},
		OAuthBase:         oauth.URL,
		PublicBases:       []string{public.URL},
		RequestsPerSecond: -1,
	})

	var got string
	require.NoError(t, f.Fetch(context.Background(), "/search.json", nil, acceptNonEmpty(&got)))
	assert.Equal(t, "public", got)
	assert.Equal(t, int32(1), oauth.hits.Load())
}

func TestFetcher_ExhaustedWrapsAttemptErrors(t *testing.T) {
	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	f := NewFetcher(FetcherConfig{PublicBases: []string{srv.URL}, RequestsPerSecond: -1})
	err := f.Fetch(context.Background(), "/search.json", nil, func([]byte) error { return nil })

	require.ErrorIs(t, err, ErrExhausted)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)

	var attemptErr *AttemptError
	require.True(t, errors.As(err, &attemptErr))
	assert.Contains(t, attemptErr.URL, "/search.json")

	status := f.Health().Status(hostOf(srv.URL))
	require.NotNil(t, status)
	assert.False(t, status.Healthy)
	assert.Equal(t, 1, status.Failures)
}

func TestFetcher_StopsOnCancelledContext(t *testing.T) {
	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	f := NewFetcher(FetcherConfig{PublicBases: []string{srv.URL}, RequestsPerSecond: -1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.Fetch(ctx, "/search.json", nil, func([]byte) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), srv.hits.Load())
}

func TestProxyDoer_RewritesURL(t *testing.T) {
	var target string
	proxy := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		target = r.URL.Query().Get("url")
		assert.Equal(t, "threadsmith-test/1.0", r.Header.Get("User-Agent"))
		writeJSON(w, listingOf(post("p", "Proxied", 1, 0)))
	})

	c := New(Config{
		UserAgent:         "threadsmith-test/1.0",
		ProxyURL:          proxy.URL + "/?url=",
		PublicBases:       []string{"https://www.reddit.com"},
		RequestsPerSecond: -1,
	})

	posts, err := c.fetchListing(context.Background(), []Request{{Path: "/r/golang/hot.json", Params: url.Values{"limit": {"3"}}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Proxied"}, titles(posts))
	assert.Equal(t, "https://www.reddit.com/r/golang/hot.json?limit=3", target)
}

func TestBuildURL(t *testing.T) {
	assert.Equal(t, "https://www.reddit.com/search.json", buildURL("https://www.reddit.com", Request{Path: "search.json"}))
	assert.Equal(t,
		"https://www.reddit.com/search.json?q=go&sort=top",
		buildURL("https://www.reddit.com", Request{Path: "/search.json", Params: url.Values{"q": {"go"}, "sort": {"top"}}}),
	)
}
