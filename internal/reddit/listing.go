package reddit

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	kindComment = "t1"
	kindLink    = "t3"

	bodyDeleted = "[deleted]"
	bodyRemoved = "[removed]"
)

// listing is the upstream paginated envelope.
type listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string  `json:"after"`
		Children []child `json:"children"`
	} `json:"data"`
}

// child is a tagged variant: kind is decoded first, data later by shape.
type child struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// linkData is the subset of a t3 payload we keep. Score and created_utc are
// pointers because some endpoints omit them.
type linkData struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Selftext    string   `json:"selftext"`
	URL         string   `json:"url"`
	Subreddit   string   `json:"subreddit"`
	Author      string   `json:"author"`
	Permalink   string   `json:"permalink"`
	NumComments int      `json:"num_comments"`
	Score       *int     `json:"score"`
	CreatedUTC  *float64 `json:"created_utc"`
}

type commentData struct {
	ID         string   `json:"id"`
	Body       string   `json:"body"`
	Author     string   `json:"author"`
	Score      *int     `json:"score"`
	CreatedUTC *float64 `json:"created_utc"`
}

func (c child) hasData() bool {
	d := bytes.TrimSpace(c.Data)
	return len(d) > 0 && !bytes.Equal(d, []byte("null"))
}

// normalizePostChildren maps t3 children into Posts. Other kinds are skipped.
func normalizePostChildren(children []child) ([]Post, error) {
	posts := make([]Post, 0, len(children))
	for i, c := range children {
		if !c.hasData() {
			return nil, fmt.Errorf("%w: child %d has no data", ErrMalformedListing, i)
		}
		if c.Kind != kindLink {
			continue
		}

		var d linkData
		if err := json.Unmarshal(c.Data, &d); err != nil {
			return nil, fmt.Errorf("%w: child %d: %v", ErrMalformedListing, i, err)
		}
		posts = append(posts, d.toPost())
	}
	return posts, nil
}

// normalizeCommentChildren maps t1 children into Comments, dropping "more"
// stubs and deleted or removed bodies.
func normalizeCommentChildren(children []child) ([]Comment, error) {
	comments := make([]Comment, 0, len(children))
	for i, c := range children {
		if !c.hasData() {
			return nil, fmt.Errorf("%w: child %d has no data", ErrMalformedListing, i)
		}
		if c.Kind != kindComment {
			continue
		}

		var d commentData
		if err := json.Unmarshal(c.Data, &d); err != nil {
			return nil, fmt.Errorf("%w: child %d: %v", ErrMalformedListing, i, err)
		}
		if d.Body == bodyDeleted || d.Body == bodyRemoved {
			continue
		}
		comments = append(comments, Comment{
			ID:         d.ID,
			Body:       d.Body,
			Author:     d.Author,
			Score:      intOrZero(d.Score),
			CreatedUTC: floatOrZero(d.CreatedUTC),
		})
	}
	return comments, nil
}

func (d linkData) toPost() Post {
	return Post{
		ID:          d.ID,
		Title:       d.Title,
		Selftext:    d.Selftext,
		URL:         d.URL,
		Subreddit:   d.Subreddit,
		Author:      d.Author,
		Permalink:   d.Permalink,
		NumComments: d.NumComments,
		Score:       intOrZero(d.Score),
		CreatedUTC:  floatOrZero(d.CreatedUTC),
	}
}

func intOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func floatOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
