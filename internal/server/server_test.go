package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/threadsmith/internal/db"
	apperrors "github.com/abdulachik/threadsmith/internal/errors"
	"github.com/abdulachik/threadsmith/internal/generator"
	"github.com/abdulachik/threadsmith/internal/reddit"
)

type fakeReddit struct {
	posts     []reddit.Post
	thread    *reddit.Thread
	err       error
	lastOpts  reddit.SearchOptions
	permalink string
	health    *reddit.Health
}

func (f *fakeReddit) Search(_ context.Context, opts reddit.SearchOptions) ([]reddit.Post, error) {
	f.lastOpts = opts
	return f.posts, f.err
}

func (f *fakeReddit) FetchThread(_ context.Context, permalink string) (*reddit.Thread, error) {
	f.permalink = permalink
	return f.thread, f.err
}

func (f *fakeReddit) Health() *reddit.Health {
	if f.health == nil {
		f.health = reddit.NewHealth()
	}
	return f.health
}

type fakeGenerator struct {
	provider string
	last     generator.Request
	err      error
}

func (f *fakeGenerator) Generate(_ context.Context, req generator.Request) (*generator.Result, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &generator.Result{
		Post:        "پۆست: " + req.Style,
		ImagePrompt: "an illustration",
		Provider:    f.provider,
		Model:       "test-model",
	}, nil
}

type fakeImages struct {
	last generator.ImageRequest
}

func (f *fakeImages) GenerateImage(_ context.Context, req generator.ImageRequest) (string, error) {
	f.last = req
	if req.Prompt == "" {
		return "", fmt.Errorf("%w: missing prompt", generator.ErrInvalidRequest)
	}
	return "aW1n", nil
}

func newTestStore(t *testing.T) *db.Store {
	t.Helper()
	ctx := context.Background()
	store, err := db.NewStore(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	t.Cleanup(func() { store.Close() })
	return store
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorCode {
	t.Helper()
	var body struct {
		Error apperrors.APIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestSearch(t *testing.T) {
	rd := &fakeReddit{posts: []reddit.Post{{ID: "a", Title: "Go 1.25 released", NumComments: 12}}}
	h := New(Deps{Reddit: rd}).Handler()

	rec := do(t, h, http.MethodGet, "/api/reddit/search?q=golang&sort=top&t=week&titleOnly=true&order=comments&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Posts []reddit.Post `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Posts, 1)
	assert.Equal(t, 12, body.Posts[0].NumComments)

	assert.Equal(t, reddit.SearchOptions{
		Query:     "golang",
		Limit:     5,
		Sort:      reddit.SortTop,
		Window:    reddit.WindowWeek,
		TitleOnly: true,
		Order:     reddit.OrderComments,
	}, rd.lastOpts)
}

func TestSearch_TitleOnly(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"defaults to true", "q=golang", true},
		{"explicit false", "q=golang&titleOnly=false", false},
		{"explicit true", "q=golang&titleOnly=true", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rd := &fakeReddit{}
			h := New(Deps{Reddit: rd}).Handler()

			rec := do(t, h, http.MethodGet, "/api/reddit/search?"+tt.query, "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rd.lastOpts.TitleOnly)
		})
	}

	t.Run("rejects other values", func(t *testing.T) {
		rd := &fakeReddit{}
		h := New(Deps{Reddit: rd}).Handler()

		rec := do(t, h, http.MethodGet, "/api/reddit/search?q=golang&titleOnly=maybe", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apperrors.CodeInvalidRequest, errorCode(t, rec))
		assert.Empty(t, rd.lastOpts.Query)
	})
}

func TestSearch_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target string
		status int
		code   apperrors.ErrorCode
	}{
		{"invalid option", fmt.Errorf("%w: sort %q", reddit.ErrInvalidOption, "best"), "/api/reddit/search?q=x&sort=best", http.StatusBadRequest, apperrors.CodeInvalidRequest},
		{"exhausted", fmt.Errorf("%w: all failed", reddit.ErrExhausted), "/api/reddit/search?q=x", http.StatusBadGateway, apperrors.CodeUpstreamExhausted},
		{"unexpected", fmt.Errorf("boom"), "/api/reddit/search?q=x", http.StatusInternalServerError, apperrors.CodeInternal},
		{"bad limit", nil, "/api/reddit/search?q=x&limit=abc", http.StatusBadRequest, apperrors.CodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(Deps{Reddit: &fakeReddit{err: tt.err}}).Handler()
			rec := do(t, h, http.MethodGet, tt.target, "")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestThread(t *testing.T) {
	rd := &fakeReddit{thread: &reddit.Thread{
		Post:     reddit.Post{ID: "abc", Title: "T"},
		Comments: []reddit.Comment{{ID: "c1", Body: "hi", Author: "u"}},
	}}
	h := New(Deps{Reddit: rd}).Handler()

	rec := do(t, h, http.MethodGet, "/api/reddit/post?permalink=%2Fr%2Fgo%2Fcomments%2Fabc%2Ft%2F", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/r/go/comments/abc/t/", rd.permalink)

	var body struct {
		Post     reddit.Post      `json:"post"`
		Comments []reddit.Comment `json:"comments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "T", body.Post.Title)
	assert.Len(t, body.Comments, 1)
}

func TestThread_Errors(t *testing.T) {
	t.Run("missing permalink", func(t *testing.T) {
		rec := do(t, New(Deps{Reddit: &fakeReddit{}}).Handler(), http.MethodGet, "/api/reddit/post", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		rd := &fakeReddit{err: fmt.Errorf("%w: /r/x", reddit.ErrNotFound)}
		rec := do(t, New(Deps{Reddit: rd}).Handler(), http.MethodGet, "/api/reddit/post?permalink=/r/x", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, apperrors.CodeNotFound, errorCode(t, rec))
	})

	t.Run("exhausted", func(t *testing.T) {
		rd := &fakeReddit{err: fmt.Errorf("fetch thread: %w", reddit.ErrExhausted)}
		rec := do(t, New(Deps{Reddit: rd}).Handler(), http.MethodGet, "/api/reddit/post?permalink=/r/x", "")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestGenerate_SavesDraft(t *testing.T) {
	store := newTestStore(t)
	claude := &fakeGenerator{provider: generator.ProviderClaude}
	h := New(Deps{Reddit: &fakeReddit{}, Claude: claude, Drafts: store}).Handler()

	rec := do(t, h, http.MethodPost, "/api/claude",
		`{"style":"storytelling","hook":"question","text":"content","useEmojis":true,"apiKey":"k","permalink":"/r/go/comments/abc/t/"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "پۆست: storytelling", resp.Sorani)
	assert.Equal(t, "an illustration", resp.ImagePrompt)
	require.NotEmpty(t, resp.DraftID)

	assert.True(t, claude.last.UseEmojis)
	assert.Equal(t, "k", claude.last.APIKey)

	draft, err := store.GetDraft(context.Background(), resp.DraftID)
	require.NoError(t, err)
	assert.Equal(t, "/r/go/comments/abc/t/", draft.Permalink)
	assert.Equal(t, generator.ProviderClaude, draft.Provider)
	assert.Equal(t, "test-model", draft.Model)
	assert.Equal(t, resp.Sorani, draft.PostText)
}

func TestGenerate_Errors(t *testing.T) {
	t.Run("provider not configured", func(t *testing.T) {
		h := New(Deps{Reddit: &fakeReddit{}}).Handler()
		rec := do(t, h, http.MethodPost, "/api/openai-post", `{"style":"a","hook":"b","text":"c"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid json", func(t *testing.T) {
		h := New(Deps{Reddit: &fakeReddit{}, OpenAI: &fakeGenerator{}}).Handler()
		rec := do(t, h, http.MethodPost, "/api/openai-post", `{not json`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apperrors.CodeInvalidRequest, errorCode(t, rec))
	})

	t.Run("missing fields", func(t *testing.T) {
		h := New(Deps{Reddit: &fakeReddit{}, OpenAI: &fakeGenerator{}}).Handler()
		rec := do(t, h, http.MethodPost, "/api/openai-post", `{"style":"a"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing key", func(t *testing.T) {
		gen := &fakeGenerator{err: fmt.Errorf("openai: %w", generator.ErrMissingAPIKey)}
		h := New(Deps{Reddit: &fakeReddit{}, OpenAI: gen}).Handler()
		rec := do(t, h, http.MethodPost, "/api/openai-post", `{"style":"a","hook":"b","text":"c"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("provider failure", func(t *testing.T) {
		gen := &fakeGenerator{err: &generator.APIError{StatusCode: 500, Message: "overloaded"}}
		h := New(Deps{Reddit: &fakeReddit{}, Claude: gen}).Handler()
		rec := do(t, h, http.MethodPost, "/api/claude", `{"style":"a","hook":"b","text":"c"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, apperrors.CodeInternal, errorCode(t, rec))
	})
}

func TestImage(t *testing.T) {
	images := &fakeImages{}
	h := New(Deps{Reddit: &fakeReddit{}, Images: images}).Handler()

	rec := do(t, h, http.MethodPost, "/api/image", `{"prompt":"a lighthouse","size":"1024x1024"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"b64":"aW1n"}`, rec.Body.String())
	assert.Equal(t, "1024x1024", images.last.Size)

	rec = do(t, h, http.MethodPost, "/api/image", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDrafts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	h := New(Deps{Reddit: &fakeReddit{}, Drafts: store}).Handler()

	d, err := store.CreateDraft(ctx, db.CreateDraftParams{Provider: "openai", PostText: "text"})
	require.NoError(t, err)

	rec := do(t, h, http.MethodGet, "/api/drafts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Drafts []db.Draft `json:"drafts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Drafts, 1)
	assert.Equal(t, d.ID, list.Drafts[0].ID)

	rec = do(t, h, http.MethodGet, "/api/drafts/"+d.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/drafts/"+d.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/drafts/"+d.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperrors.CodeNotFound, errorCode(t, rec))

	rec = do(t, h, http.MethodGet, "/api/drafts?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	rd := &fakeReddit{health: reddit.NewHealth()}
	h := New(Deps{Reddit: rd}).Handler()

	rec := do(t, h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rd.health.RecordFailure("www.reddit.com", fmt.Errorf("timeout"))
	rec = do(t, h, http.MethodGet, "/healthz", "")
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
	assert.Contains(t, rec.Body.String(), "www.reddit.com")
}

func TestMetrics(t *testing.T) {
	h := New(Deps{Reddit: &fakeReddit{}}).Handler()
	_ = do(t, h, http.MethodGet, "/healthz", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "threadsmith_http_requests_total")
}
