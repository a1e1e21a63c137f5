package reddit

import (
	"errors"
	"fmt"
)

var (
	// ErrExhausted is returned when every endpoint and fallback tier failed.
	ErrExhausted = errors.New("all Reddit endpoints failed")

	// ErrNotFound is returned when a permalink resolves to no post.
	ErrNotFound = errors.New("post not found")

	// ErrMalformedListing is returned when a listing child has no data object.
	ErrMalformedListing = errors.New("malformed listing")

	// ErrInvalidOption is returned for unrecognized search options.
	ErrInvalidOption = errors.New("invalid search option")
)

// Post is one discussion thread.
type Post struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	URL         string  `json:"url"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	Permalink   string  `json:"permalink"`
	NumComments int     `json:"num_comments"`
	Score       int     `json:"score"`
	CreatedUTC  float64 `json:"created_utc"`
}

// Comment is one reply under a Post.
type Comment struct {
	ID         string  `json:"id"`
	Body       string  `json:"body"`
	Author     string  `json:"author"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
}

// Thread is a post with its usable top-level comments.
type Thread struct {
	Post     Post      `json:"post"`
	Comments []Comment `json:"comments"`
}

// Sort is an upstream sort order, or the "trending" orchestration alias.
type Sort string

const (
	SortHot       Sort = "hot"
	SortNew       Sort = "new"
	SortTop       Sort = "top"
	SortRelevance Sort = "relevance"
	SortTrending  Sort = "trending"
)

// TimeWindow restricts search results to a recent period.
type TimeWindow string

const (
	WindowHour  TimeWindow = "hour"
	WindowDay   TimeWindow = "day"
	WindowWeek  TimeWindow = "week"
	WindowMonth TimeWindow = "month"
	WindowYear  TimeWindow = "year"
	WindowAll   TimeWindow = "all"
)

// Order is an optional client-side ordering applied after search.
type Order string

const (
	OrderNone     Order = ""
	OrderUpvotes  Order = "upvotes"
	OrderComments Order = "comments"
)

// ParseSort validates a sort name. Empty input yields SortRelevance.
func ParseSort(s string) (Sort, error) {
	switch Sort(s) {
	case "":
		return SortRelevance, nil
	case SortHot, SortNew, SortTop, SortRelevance, SortTrending:
		return Sort(s), nil
	}
	return "", fmt.Errorf("%w: sort %q", ErrInvalidOption, s)
}

// ParseTimeWindow validates a time window. Empty input yields WindowDay.
func ParseTimeWindow(s string) (TimeWindow, error) {
	switch TimeWindow(s) {
	case "":
		return WindowDay, nil
	case WindowHour, WindowDay, WindowWeek, WindowMonth, WindowYear, WindowAll:
		return TimeWindow(s), nil
	}
	return "", fmt.Errorf("%w: time window %q", ErrInvalidOption, s)
}

// ParseOrder validates a client-side order. "none" and empty both mean upstream order.
func ParseOrder(s string) (Order, error) {
	switch s {
	case "", "none":
		return OrderNone, nil
	case string(OrderUpvotes), string(OrderComments):
		return Order(s), nil
	}
	return "", fmt.Errorf("%w: order %q", ErrInvalidOption, s)
}
