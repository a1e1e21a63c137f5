package reddit

import (
	"strings"
	"unicode/utf8"
)

// minTokenLen is the length a query token must exceed to count for matching.
const minTokenLen = 2

// Matcher checks posts against the tokens of a query.
type Matcher struct {
	phrase    string
	tokens    []string
	titleOnly bool
}

// NewMatcher tokenizes the raw query (without any title: operator).
func NewMatcher(query string, titleOnly bool) *Matcher {
	return &Matcher{
		phrase:    strings.ToLower(strings.TrimSpace(query)),
		tokens:    Tokenize(query),
		titleOnly: titleOnly,
	}
}

// Tokenize lower-cases the query, splits on whitespace and drops short tokens.
func Tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) > minTokenLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// Tokens returns the matcher's query tokens.
func (m *Matcher) Tokens() []string {
	return m.tokens
}

func (m *Matcher) haystack(p Post) string {
	if m.titleOnly {
		return strings.ToLower(p.Title)
	}
	return strings.ToLower(p.Title + " " + p.Selftext)
}

// MatchAll reports whether every token occurs in the searched fields.
func (m *Matcher) MatchAll(p Post) bool {
	text := m.haystack(p)
	for _, t := range m.tokens {
		if !strings.Contains(text, t) {
			return false
		}
	}
	return true
}

// MatchAny reports whether at least one token occurs in the searched fields.
func (m *Matcher) MatchAny(p Post) bool {
	text := m.haystack(p)
	for _, t := range m.tokens {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

// Mentions is the loose test used when sampling subreddit listings: any
// token matches, or the whole phrase when the query has no usable tokens.
func (m *Matcher) Mentions(p Post) bool {
	if len(m.tokens) == 0 {
		return m.phrase != "" && strings.Contains(m.haystack(p), m.phrase)
	}
	return m.MatchAny(p)
}

// Refine keeps posts matching all tokens, else posts matching any token,
// else returns the input unchanged. It never empties a non-empty list.
func (m *Matcher) Refine(posts []Post) []Post {
	if len(m.tokens) == 0 || len(posts) == 0 {
		return posts
	}

	if all := filterPosts(posts, m.MatchAll); len(all) > 0 {
		return all
	}
	if some := filterPosts(posts, m.MatchAny); len(some) > 0 {
		return some
	}
	return posts
}

func filterPosts(posts []Post, keep func(Post) bool) []Post {
	result := make([]Post, 0, len(posts))
	for _, p := range posts {
		if keep(p) {
			result = append(result, p)
		}
	}
	return result
}
