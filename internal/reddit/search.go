package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 100
	titleOperator      = "title:"
)

var errEmptyListing = errors.New("empty listing")

// relaxedWindows is the order in which the time window widens when the
// requested window returns nothing.
var relaxedWindows = []TimeWindow{WindowWeek, WindowMonth, WindowYear, WindowAll}

// trendingSorts is the precedence for the "trending" alias.
var trendingSorts = []Sort{SortHot, SortNew, SortRelevance, SortTop}

// SearchOptions controls one logical search.
type SearchOptions struct {
	Query     string
	Limit     int
	Sort      Sort
	Window    TimeWindow
	TitleOnly bool
	Order     Order
}

func (o SearchOptions) withDefaults() (SearchOptions, error) {
	o.Query = strings.TrimSpace(o.Query)
	if o.Query == "" {
		return o, fmt.Errorf("%w: query is required", ErrInvalidOption)
	}

	if o.Limit <= 0 {
		o.Limit = defaultSearchLimit
	}
	if o.Limit > maxSearchLimit {
		o.Limit = maxSearchLimit
	}

	var err error
	if o.Sort, err = ParseSort(string(o.Sort)); err != nil {
		return o, err
	}
	if o.Window, err = ParseTimeWindow(string(o.Window)); err != nil {
		return o, err
	}
	if o.Order, err = ParseOrder(string(o.Order)); err != nil {
		return o, err
	}
	return o, nil
}

// upstreamQuery is the q parameter sent to the search endpoints.
func (o SearchOptions) upstreamQuery() string {
	if o.TitleOnly {
		return titleOperator + o.Query
	}
	return o.Query
}

// Attempt is one (time window, sort) trial of the search ladder.
type Attempt struct {
	Window TimeWindow
	Sort   Sort
}

// PlanAttempts returns the ordered search ladder for the requested sort and
// window: the requested pair, then top, then relevance and top over
// progressively wider windows. "trending" starts with hot, new, relevance, top.
func PlanAttempts(sortOrder Sort, window TimeWindow) []Attempt {
	var plan []Attempt

	if sortOrder == SortTrending {
		for _, s := range trendingSorts {
			plan = append(plan, Attempt{Window: window, Sort: s})
		}
	} else {
		plan = append(plan,
			Attempt{Window: window, Sort: sortOrder},
			Attempt{Window: window, Sort: SortTop},
		)
	}

	for _, w := range relaxedWindows {
		if w == window {
			continue
		}
		plan = append(plan,
			Attempt{Window: w, Sort: SortRelevance},
			Attempt{Window: w, Sort: SortTop},
		)
	}

	return dedupeAttempts(plan)
}

func dedupeAttempts(plan []Attempt) []Attempt {
	seen := make(map[Attempt]bool, len(plan))
	result := make([]Attempt, 0, len(plan))
	for _, a := range plan {
		if seen[a] {
			continue
		}
		seen[a] = true
		result = append(result, a)
	}
	return result
}

// searchRequests returns the three search paths for one attempt, in the
// order they are tried on each host.
func searchRequests(q string, a Attempt, limit int) []Request {
	base := func() url.Values {
		v := url.Values{}
		v.Set("q", q)
		v.Set("sort", string(a.Sort))
		v.Set("t", string(a.Window))
		v.Set("limit", strconv.Itoa(limit))
		return v
	}

	raw := base()
	raw.Set("raw_json", "1")

	return []Request{
		{Path: "/search.json", Params: base()},
		{Path: "/r/all/search.json", Params: base()},
		{Path: "/search.json", Params: raw},
	}
}

// Search runs the fallback ladder and returns the first non-empty result,
// refined by query tokens and optionally re-ordered. It fails with
// ErrExhausted only when every search attempt and the subreddit sampling
// produced nothing.
func (c *Client) Search(ctx context.Context, opts SearchOptions) ([]Post, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	matcher := NewMatcher(opts.Query, opts.TitleOnly)
	q := opts.upstreamQuery()

	for _, attempt := range PlanAttempts(opts.Sort, opts.Window) {
		posts, err := c.fetchListing(ctx, searchRequests(q, attempt, opts.Limit))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			slog.Debug("search attempt returned nothing",
				"query", q,
				"sort", attempt.Sort,
				"t", attempt.Window,
			)
			continue
		}

		slog.Debug("search attempt succeeded",
			"query", q,
			"sort", attempt.Sort,
			"t", attempt.Window,
			"count", len(posts),
		)
		searchTierTotal.WithLabelValues(tierSearch).Inc()
		return finishResults(matcher.Refine(posts), opts), nil
	}

	posts, err := c.sample(ctx, matcher, opts.Limit)
	if err != nil {
		searchTierTotal.WithLabelValues(tierNone).Inc()
		return nil, err
	}

	searchTierTotal.WithLabelValues(tierSampling).Inc()
	return finishResults(matcher.Refine(posts), opts), nil
}

// sample reads hot listings from the sample subreddits. The first subreddit
// with posts mentioning the query wins; otherwise everything sampled is
// returned unfiltered.
func (c *Client) sample(ctx context.Context, m *Matcher, limit int) ([]Post, error) {
	var sampled []Post

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	for _, sub := range c.sampleSubs {
		posts, err := c.fetchListing(ctx, []Request{{Path: "/r/" + sub + "/hot.json", Params: params}})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			slog.Warn("failed to sample subreddit", "subreddit", sub, "error", err)
			continue
		}

		if matched := filterPosts(posts, m.Mentions); len(matched) > 0 {
			slog.Debug("sampled subreddit matched query", "subreddit", sub, "count", len(matched))
			return matched, nil
		}
		sampled = append(sampled, posts...)
	}

	if len(sampled) == 0 {
		return nil, fmt.Errorf("%w: no search results and no sampled posts", ErrExhausted)
	}
	return sampled, nil
}

// fetchListing fetches a post listing and accepts it only when it holds at
// least one post.
func (c *Client) fetchListing(ctx context.Context, reqs []Request) ([]Post, error) {
	var posts []Post

	err := c.fetcher.FetchAny(ctx, reqs, func(body []byte) error {
		var l listing
		if err := json.Unmarshal(body, &l); err != nil {
			return fmt.Errorf("decode listing: %w", err)
		}
		if len(l.Data.Children) == 0 {
			return errEmptyListing
		}

		normalized, err := normalizePostChildren(l.Data.Children)
		if err != nil {
			return err
		}
		if len(normalized) == 0 {
			return errEmptyListing
		}

		posts = normalized
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// finishResults applies the requested client-side order and the limit.
func finishResults(posts []Post, opts SearchOptions) []Post {
	result := OrderPosts(posts, opts.Order)
	if len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result
}

// OrderPosts returns a copy of posts sorted by the given order. Ties keep
// their input order. OrderNone returns the upstream order.
func OrderPosts(posts []Post, order Order) []Post {
	result := make([]Post, len(posts))
	copy(result, posts)

	switch order {
	case OrderUpvotes:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Score > result[j].Score
		})
	case OrderComments:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].NumComments > result[j].NumComments
		})
	}
	return result
}
