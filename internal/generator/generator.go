// Package generator rewrites a Reddit thread into a Sorani Kurdish LinkedIn
// post and derives an English image prompt from it.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidRequest is returned for missing or unsupported request fields.
	ErrInvalidRequest = errors.New("invalid generation request")

	// ErrMissingAPIKey is returned when neither the request nor the
	// configuration carries a provider key.
	ErrMissingAPIKey = errors.New("API key not provided")

	// ErrEmptyResponse is returned when the provider answered without text.
	ErrEmptyResponse = errors.New("empty response from API")

	// ErrTruncated is returned when the provider spent the whole completion
	// budget before producing any text.
	ErrTruncated = errors.New("response cut off by token limit")
)

// Provider names used in drafts and metrics.
const (
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
)

// Request is one post generation request.
type Request struct {
	Style       string `json:"style"`
	Hook        string `json:"hook"`
	Text        string `json:"text"`
	UseEmojis   bool   `json:"useEmojis"`
	UseHashtags bool   `json:"useHashtags"`

	// OpenAI only.
	Model           string `json:"model,omitempty"`
	ReasoningEffort string `json:"reasoningEffort,omitempty"`
	Verbosity       string `json:"verbosity,omitempty"`

	// APIKey overrides the configured key for this call.
	APIKey string `json:"apiKey,omitempty"`
}

// Validate checks the fields every provider needs.
func (r Request) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Style) == "" {
		missing = append(missing, "style")
	}
	if strings.TrimSpace(r.Hook) == "" {
		missing = append(missing, "hook")
	}
	if strings.TrimSpace(r.Text) == "" {
		missing = append(missing, "text")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	return nil
}

// Result is a generated post and its image prompt.
type Result struct {
	Post        string `json:"sorani"`
	ImagePrompt string `json:"imagePrompt"`
	Provider    string `json:"-"`
	Model       string `json:"-"`
}

// Generator produces a post and image prompt from thread text.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}
