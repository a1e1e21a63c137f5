package generator

import (
	"strings"
	"unicode/utf8"

	"github.com/abdulachik/threadsmith/internal/reddit"
)

const (
	// LinkedInMaxLength is the maximum character count for a LinkedIn post.
	LinkedInMaxLength = 3000

	// DefaultPromptComments is how many comments go into the prompt.
	DefaultPromptComments = 10
)

// ComposeThreadText flattens a thread into the content block of a prompt:
// title, body, then up to maxComments "- author: body" lines.
func ComposeThreadText(t *reddit.Thread, maxComments int) string {
	if maxComments <= 0 {
		maxComments = DefaultPromptComments
	}

	var b strings.Builder
	b.WriteString(t.Post.Title)
	b.WriteString("\n\n")
	b.WriteString(t.Post.Selftext)
	b.WriteString("\n\nTop comments:\n")

	comments := t.Comments
	if len(comments) > maxComments {
		comments = comments[:maxComments]
	}

	for i, c := range comments {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(c.Author)
		b.WriteString(": ")
		b.WriteString(c.Body)
	}

	return b.String()
}

// FitsInLimit checks if the post fits within the limit.
func FitsInLimit(post string, limit int) bool {
	return utf8.RuneCountInString(post) <= limit
}
