package reddit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// upstream is a fake Reddit host that counts the requests it serves.
type upstream struct {
	*httptest.Server
	hits atomic.Int32
}

func newUpstream(t *testing.T, handler http.HandlerFunc) *upstream {
	t.Helper()

	u := &upstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(u.Close)
	return u
}

func newTestClient(bases ...string) *Client {
	return New(Config{
		UserAgent:         "threadsmith-test/1.0",
		PublicBases:       bases,
		RequestsPerSecond: -1,
		Timeout:           2 * time.Second,
	})
}

func linkChild(data map[string]any) map[string]any {
	return map[string]any{"kind": "t3", "data": data}
}

func commentChild(id, body string) map[string]any {
	return map[string]any{
		"kind": "t1",
		"data": map[string]any{
			"id":          id,
			"body":        body,
			"author":      "user_" + id,
			"score":       1,
			"created_utc": 1700000000.0,
		},
	}
}

func listingOf(children ...map[string]any) map[string]any {
	if children == nil {
		children = []map[string]any{}
	}
	return map[string]any{
		"kind": "Listing",
		"data": map[string]any{"children": children},
	}
}

func post(id, title string, score, comments int) map[string]any {
	return linkChild(map[string]any{
		"id":           id,
		"title":        title,
		"selftext":     "",
		"url":          "https://example.com/" + id,
		"subreddit":    "test",
		"author":       "author_" + id,
		"permalink":    "/r/test/comments/" + id + "/slug/",
		"num_comments": comments,
		"score":        score,
		"created_utc":  1700000000.0,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func titles(posts []Post) []string {
	result := make([]string, len(posts))
	for i, p := range posts {
		result[i] = p.Title
	}
	return result
}
