package generator

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

const (
	claudeAPIURL       = "https://api.anthropic.com/v1/messages"
	claudeAPIVersion   = "2023-06-01"
	defaultClaudeModel = "claude-sonnet-4-20250514"

	claudePostMaxTokens  = 1400
	claudeImageMaxTokens = 400
)

// ClaudeClient generates posts with the Anthropic Messages API.
type ClaudeClient struct {
	apiKey     string
	apiURL     string
	model      string
	httpClient *http.Client
}

// ClaudeConfig holds configuration for the Claude client.
type ClaudeConfig struct {
	APIKey     string
	Model      string
	APIURL     string
	HTTPClient *http.Client
}

// NewClaudeClient creates a new Claude API client.
func NewClaudeClient(config ClaudeConfig) *ClaudeClient {
	model := config.Model
	if model == "" {
		model = defaultClaudeModel
	}

	apiURL := config.APIURL
	if apiURL == "" {
		apiURL = claudeAPIURL
	}

	return &ClaudeClient{
		apiKey:     config.APIKey,
		apiURL:     apiURL,
		model:      model,
		httpClient: newHTTPClient(config.HTTPClient),
	}
}

// Message represents a message in the conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

type claudeResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Model returns the model used for generation.
func (c *ClaudeClient) Model() string {
	return c.model
}

// Complete sends one completion request and returns the first text block.
func (c *ClaudeClient) Complete(ctx context.Context, apiKey, system, user string, maxTokens int) (string, error) {
	if apiKey == "" {
		apiKey = c.apiKey
	}
	if apiKey == "" {
		return "", fmt.Errorf("anthropic: %w", ErrMissingAPIKey)
	}

	req := claudeRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  []Message{{Role: "user", Content: user}},
	}

	headers := map[string]string{
		"x-api-key":         apiKey,
		"anthropic-version": claudeAPIVersion,
	}

	var resp claudeResponse
	if err := postJSON(ctx, c.httpClient, c.apiURL, headers, req, &resp); err != nil {
		return "", err
	}

	slog.Debug("claude completion",
		"model", c.model,
		"stop_reason", resp.StopReason,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)

	if len(resp.Content) == 0 || resp.Content[0].Type != "text" {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Content[0].Text), nil
}

// Generate writes the post, then derives the image prompt from it.
func (c *ClaudeClient) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	post, err := c.Complete(ctx, req.APIKey, PostSystemPrompt, BuildPostPrompt(req), claudePostMaxTokens)
	if err != nil {
		observeGeneration(ProviderClaude, err)
		return nil, fmt.Errorf("generate post: %w", err)
	}

	imagePrompt, err := c.Complete(ctx, req.APIKey, ImageSystemPrompt, BuildImagePrompt(post), claudeImageMaxTokens)
	if err != nil {
		observeGeneration(ProviderClaude, err)
		return nil, fmt.Errorf("generate image prompt: %w", err)
	}

	observeGeneration(ProviderClaude, nil)
	return &Result{
		Post:        post,
		ImagePrompt: imagePrompt,
		Provider:    ProviderClaude,
		Model:       c.model,
	}, nil
}
