package generator

import (
	"fmt"
	"strings"
)

// PostSystemPrompt is the system prompt for post generation.
const PostSystemPrompt = "You are a Kurdish Sorani social media copywriter. Always respond only in Sorani Kurdish (Central Kurdish)."

// ImageSystemPrompt is the system prompt for image prompt derivation.
const ImageSystemPrompt = "You are an expert at creating concise, concrete visual prompts for image generation. Language: English."

// postPromptTemplate is filled with style, hook, emoji rule, hashtag rule and content.
const postPromptTemplate = `Rewrite this Reddit content (post + selected comments) into a high-quality Kurdish Sorani LinkedIn post.

Constraints:
- Output must be Sorani Kurdish only.
- Style: %s.
- Hook type: %s. Start with an attention-grabbing hook.
- Keep it professional and concise, with a clear narrative.
- Use right-to-left layout, suitable for LinkedIn.
- %s
- %s
- Preserve factual accuracy for quotes/stats.

Content:
%s`

const imagePromptTemplate = `From the following Sorani LinkedIn post, derive one concise English prompt that describes a LinkedIn-suitable illustrative image (no text in image). Prefer a wide aspect (landscape). Return only the prompt.

Post:
%s`

// BuildPostPrompt renders the user prompt for a generation request.
func BuildPostPrompt(req Request) string {
	emojis := "Avoid using emojis."
	if req.UseEmojis {
		emojis = "Use emojis for bullets and numbers and tasteful emphasis."
	}

	hashtags := "Do not include hashtags."
	if req.UseHashtags {
		hashtags = "Include a short line of relevant Kurdish or English hashtags at the end (2-6)."
	}

	return fmt.Sprintf(postPromptTemplate,
		strings.TrimSpace(req.Style),
		strings.TrimSpace(req.Hook),
		emojis,
		hashtags,
		req.Text,
	)
}

// BuildImagePrompt renders the user prompt that turns a post into an image prompt.
func BuildImagePrompt(post string) string {
	return fmt.Sprintf(imagePromptTemplate, post)
}
