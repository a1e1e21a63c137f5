package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// threadCommentLimit is the comment count requested from the upstream.
const threadCommentLimit = "100"

var errNoPost = errors.New("listing has no post")

// FetchThread retrieves a thread's post and its usable top-level comments.
// It returns ErrNotFound when a host answered but the permalink has no post,
// and ErrExhausted when no host answered at all.
func (c *Client) FetchThread(ctx context.Context, permalink string) (*Thread, error) {
	path, err := NormalizePermalink(permalink)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("limit", threadCommentLimit)
	params.Set("raw_json", "1")

	var thread *Thread
	err = c.fetcher.Fetch(ctx, path+".json", params, func(body []byte) error {
		t, err := decodeThread(body)
		if err != nil {
			return err
		}
		if len(t.Comments) > c.maxComments {
			t.Comments = t.Comments[:c.maxComments]
		}
		thread = t
		return nil
	})
	if err != nil {
		if errors.Is(err, errNoPost) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("fetch thread %s: %w", path, err)
	}

	return thread, nil
}

// decodeThread parses the [post-listing, comment-listing] response.
func decodeThread(body []byte) (*Thread, error) {
	var parts []listing
	if err := json.Unmarshal(body, &parts); err != nil {
		return nil, fmt.Errorf("decode thread: %w", err)
	}
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: expected post and comment listings, got %d", ErrMalformedListing, len(parts))
	}

	posts, err := normalizePostChildren(parts[0].Data.Children)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, errNoPost
	}

	comments, err := normalizeCommentChildren(parts[1].Data.Children)
	if err != nil {
		return nil, err
	}

	return &Thread{Post: posts[0], Comments: comments}, nil
}

// NormalizePermalink accepts a relative permalink or a full reddit URL and
// returns the path without a trailing ".json".
func NormalizePermalink(permalink string) (string, error) {
	p := strings.TrimSpace(permalink)
	if p == "" {
		return "", fmt.Errorf("%w: permalink is required", ErrInvalidOption)
	}

	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		u, err := url.Parse(p)
		if err != nil {
			return "", fmt.Errorf("%w: permalink: %v", ErrInvalidOption, err)
		}
		if !strings.HasSuffix(u.Hostname(), "reddit.com") {
			return "", fmt.Errorf("%w: permalink host %q is not reddit", ErrInvalidOption, u.Hostname())
		}
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}

	p = strings.TrimSuffix(p, ".json")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if p == "/" {
		return "", fmt.Errorf("%w: permalink has no path", ErrInvalidOption)
	}
	return p, nil
}
