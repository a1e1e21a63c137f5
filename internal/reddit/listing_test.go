package reddit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeChildren(t *testing.T, raw string) []child {
	t.Helper()
	var children []child
	require.NoError(t, json.Unmarshal([]byte(raw), &children))
	return children
}

func TestNormalizePostChildren(t *testing.T) {
	t.Run("keeps every field", func(t *testing.T) {
		children := decodeChildren(t, `[{"kind":"t3","data":{
			"id":"abc","title":"AI Marketing Trends 2024","selftext":"body text",
			"url":"https://example.com/x","subreddit":"marketing","author":"someone",
			"permalink":"/r/marketing/comments/abc/ai_marketing/","num_comments":42,
			"score":-3,"created_utc":1712345678.5}}]`)

		posts, err := normalizePostChildren(children)
		require.NoError(t, err)
		require.Len(t, posts, 1)

		assert.Equal(t, Post{
			ID:          "abc",
			Title:       "AI Marketing Trends 2024",
			Selftext:    "body text",
			URL:         "https://example.com/x",
			Subreddit:   "marketing",
			Author:      "someone",
			Permalink:   "/r/marketing/comments/abc/ai_marketing/",
			NumComments: 42,
			Score:       -3,
			CreatedUTC:  1712345678.5,
		}, posts[0])
	})

	t.Run("defaults missing score and created_utc to zero", func(t *testing.T) {
		children := decodeChildren(t, `[{"kind":"t3","data":{"id":"x","title":"T","permalink":"/r/a/comments/x/"}}]`)

		posts, err := normalizePostChildren(children)
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, 0, posts[0].Score)
		assert.Equal(t, float64(0), posts[0].CreatedUTC)
	})

	t.Run("skips unknown kinds", func(t *testing.T) {
		children := decodeChildren(t, `[
			{"kind":"t5","data":{"display_name":"golang"}},
			{"kind":"t3","data":{"id":"p","title":"Post"}}]`)

		posts, err := normalizePostChildren(children)
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, "p", posts[0].ID)
	})

	t.Run("fails when data is missing", func(t *testing.T) {
		children := decodeChildren(t, `[{"kind":"t3"}]`)

		_, err := normalizePostChildren(children)
		assert.ErrorIs(t, err, ErrMalformedListing)
	})

	t.Run("fails when data is null", func(t *testing.T) {
		children := decodeChildren(t, `[{"kind":"t3","data":null}]`)

		_, err := normalizePostChildren(children)
		assert.ErrorIs(t, err, ErrMalformedListing)
	})
}

func TestNormalizeCommentChildren(t *testing.T) {
	children := decodeChildren(t, `[
		{"kind":"t1","data":{"id":"c1","body":"first","author":"a","score":5,"created_utc":10}},
		{"kind":"t1","data":{"id":"c2","body":"[deleted]","author":"[deleted]","score":1}},
		{"kind":"t1","data":{"id":"c3","body":"[removed]","author":"b","score":1}},
		{"kind":"more","data":{"id":"m1","body":"looks like a comment","children":["x","y"]}},
		{"kind":"t1","data":{"id":"c4","body":"second","author":"c"}}
	]`)

	comments, err := normalizeCommentChildren(children)
	require.NoError(t, err)

	require.Len(t, comments, 2)
	assert.Equal(t, Comment{ID: "c1", Body: "first", Author: "a", Score: 5, CreatedUTC: 10}, comments[0])
	assert.Equal(t, "c4", comments[1].ID)
	assert.Equal(t, 0, comments[1].Score)
}

func TestNormalizeCommentChildren_MalformedData(t *testing.T) {
	children := decodeChildren(t, `[{"kind":"t1"}]`)

	_, err := normalizeCommentChildren(children)
	assert.ErrorIs(t, err, ErrMalformedListing)
}
