package generator

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

const (
	openAIBaseURL      = "https://api.openai.com/v1"
	defaultOpenAIModel = "gpt-5-mini"

	openAIPostMaxTokens  = 10000
	openAIImageMaxTokens = 800
	openAIImageModel     = "gpt-5-mini"

	finishReasonLength = "length"
)

var (
	openAIModels     = []string{"gpt-5", "gpt-5-mini", "gpt-5-nano"}
	reasoningEfforts = []string{"minimal", "low", "medium", "high"}
	verbosities      = []string{"low", "medium", "high"}
)

// OpenAIClient generates posts and images with the OpenAI API.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	imageModel string
	httpClient *http.Client
}

// OpenAIConfig holds configuration for the OpenAI client.
type OpenAIConfig struct {
	APIKey     string
	Model      string
	ImageModel string
	BaseURL    string
	HTTPClient *http.Client
}

// NewOpenAIClient creates a new OpenAI API client.
func NewOpenAIClient(config OpenAIConfig) *OpenAIClient {
	model := config.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	imageModel := config.ImageModel
	if imageModel == "" {
		imageModel = defaultImageModel
	}

	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = openAIBaseURL
	}

	return &OpenAIClient{
		apiKey:     config.APIKey,
		baseURL:    baseURL,
		model:      model,
		imageModel: imageModel,
		httpClient: newHTTPClient(config.HTTPClient),
	}
}

type chatRequest struct {
	Model               string    `json:"model"`
	Messages            []Message `json:"messages"`
	ReasoningEffort     string    `json:"reasoning_effort,omitempty"`
	Verbosity           string    `json:"verbosity,omitempty"`
	MaxCompletionTokens int       `json:"max_completion_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		CompletionTokens        int `json:"completion_tokens"`
		CompletionTokensDetails struct {
			ReasoningTokens int `json:"reasoning_tokens"`
		} `json:"completion_tokens_details"`
	} `json:"usage"`
}

func (c *OpenAIClient) key(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if c.apiKey == "" {
		return "", fmt.Errorf("openai: %w", ErrMissingAPIKey)
	}
	return c.apiKey, nil
}

// chat sends one chat completion and returns the first choice's content.
func (c *OpenAIClient) chat(ctx context.Context, apiKey string, req chatRequest) (string, error) {
	headers := map[string]string{"Authorization": "Bearer " + apiKey}

	var resp chatResponse
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/chat/completions", headers, req, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	choice := resp.Choices[0]
	content := strings.TrimSpace(choice.Message.Content)
	if content != "" {
		return content, nil
	}

	slog.Warn("openai returned no content",
		"model", req.Model,
		"finish_reason", choice.FinishReason,
		"reasoning_tokens", resp.Usage.CompletionTokensDetails.ReasoningTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	if choice.FinishReason == finishReasonLength {
		return "", ErrTruncated
	}
	return "", ErrEmptyResponse
}

// resolveOptions applies defaults and rejects unsupported values.
func (c *OpenAIClient) resolveOptions(req Request) (model, effort, verbosity string, err error) {
	model = pick(req.Model, c.model)
	effort = pick(req.ReasoningEffort, "minimal")
	verbosity = pick(req.Verbosity, "medium")

	if !contains(openAIModels, model) {
		return "", "", "", fmt.Errorf("%w: model %q", ErrInvalidRequest, model)
	}
	if !contains(reasoningEfforts, effort) {
		return "", "", "", fmt.Errorf("%w: reasoning effort %q", ErrInvalidRequest, effort)
	}
	if !contains(verbosities, verbosity) {
		return "", "", "", fmt.Errorf("%w: verbosity %q", ErrInvalidRequest, verbosity)
	}
	return model, effort, verbosity, nil
}

// Generate writes the post, then derives the image prompt with a small model.
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	model, effort, verbosity, err := c.resolveOptions(req)
	if err != nil {
		return nil, err
	}

	apiKey, err := c.key(req.APIKey)
	if err != nil {
		return nil, err
	}

	post, err := c.chat(ctx, apiKey, chatRequest{
		Model: model,
		Messages: []Message{
			{Role: "system", Content: PostSystemPrompt},
			{Role: "user", Content: BuildPostPrompt(req)},
		},
		ReasoningEffort:     effort,
		Verbosity:           verbosity,
		MaxCompletionTokens: openAIPostMaxTokens,
	})
	if err != nil {
		observeGeneration(ProviderOpenAI, err)
		return nil, fmt.Errorf("generate post: %w", err)
	}

	imagePrompt, err := c.chat(ctx, apiKey, chatRequest{
		Model: openAIImageModel,
		Messages: []Message{
			{Role: "system", Content: ImageSystemPrompt},
			{Role: "user", Content: BuildImagePrompt(post)},
		},
		ReasoningEffort:     "minimal",
		Verbosity:           "low",
		MaxCompletionTokens: openAIImageMaxTokens,
	})
	if err != nil {
		observeGeneration(ProviderOpenAI, err)
		return nil, fmt.Errorf("generate image prompt: %w", err)
	}

	observeGeneration(ProviderOpenAI, nil)
	return &Result{
		Post:        post,
		ImagePrompt: imagePrompt,
		Provider:    ProviderOpenAI,
		Model:       model,
	}, nil
}

func pick(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
