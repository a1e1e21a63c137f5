package generator

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abdulachik/threadsmith/internal/reddit"
)

func TestComposeThreadText(t *testing.T) {
	thread := &reddit.Thread{
		Post: reddit.Post{Title: "Why Go?", Selftext: "Asking for a friend."},
		Comments: []reddit.Comment{
			{Author: "gopher", Body: "Simplicity."},
			{Author: "rustacean", Body: "Fast builds."},
		},
	}

	expected := "Why Go?\n\nAsking for a friend.\n\nTop comments:\n- gopher: Simplicity.\n- rustacean: Fast builds."
	assert.Equal(t, expected, ComposeThreadText(thread, 0))
}

func TestComposeThreadText_CapsComments(t *testing.T) {
	thread := &reddit.Thread{Post: reddit.Post{Title: "T"}}
	for i := 0; i < 15; i++ {
		thread.Comments = append(thread.Comments, reddit.Comment{Author: fmt.Sprintf("u%d", i), Body: "b"})
	}

	text := ComposeThreadText(thread, 0)
	assert.Equal(t, DefaultPromptComments, strings.Count(text, "\n- "))
	assert.Contains(t, text, "- u9: b")
	assert.NotContains(t, text, "- u10: b")

	assert.Equal(t, 3, strings.Count(ComposeThreadText(thread, 3), "\n- "))
}

func TestComposeThreadText_NoComments(t *testing.T) {
	thread := &reddit.Thread{Post: reddit.Post{Title: "T", Selftext: "S"}}
	assert.Equal(t, "T\n\nS\n\nTop comments:\n", ComposeThreadText(thread, 0))
}

func TestFitsInLimit(t *testing.T) {
	assert.True(t, FitsInLimit(strings.Repeat("ک", LinkedInMaxLength), LinkedInMaxLength))
	assert.False(t, FitsInLimit(strings.Repeat("ک", LinkedInMaxLength+1), LinkedInMaxLength))
}

func TestBuildPostPrompt(t *testing.T) {
	req := validRequest()
	prompt := BuildPostPrompt(req)
	assert.Contains(t, prompt, "- Avoid using emojis.")
	assert.Contains(t, prompt, "- Do not include hashtags.")
	assert.Contains(t, prompt, "Hook type: question.")
	assert.True(t, strings.HasSuffix(prompt, "Content:\n"+req.Text))

	req.UseEmojis = true
	req.UseHashtags = true
	prompt = BuildPostPrompt(req)
	assert.Contains(t, prompt, "Use emojis for bullets")
	assert.Contains(t, prompt, "hashtags at the end (2-6)")
}
