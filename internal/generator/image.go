package generator

import (
	"context"
	"fmt"
	"strings"
)

const (
	defaultImageModel = "gpt-image-1"

	// DefaultImageSize approximates LinkedIn's landscape share image.
	DefaultImageSize = "1536x1024"
)

var imageSizes = []string{"1024x1024", "1024x1536", "1536x1024"}

// ImageRequest is one image generation request.
type ImageRequest struct {
	Prompt string `json:"prompt"`
	Size   string `json:"size,omitempty"`
	APIKey string `json:"apiKey,omitempty"`
}

type imageAPIRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Size   string `json:"size"`
}

type imageAPIResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// GenerateImage returns a base64-encoded PNG for the prompt.
func (c *OpenAIClient) GenerateImage(ctx context.Context, req ImageRequest) (string, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", fmt.Errorf("%w: missing prompt", ErrInvalidRequest)
	}

	size := pick(req.Size, DefaultImageSize)
	if !contains(imageSizes, size) {
		return "", fmt.Errorf("%w: size %q", ErrInvalidRequest, size)
	}

	apiKey, err := c.key(req.APIKey)
	if err != nil {
		return "", err
	}

	headers := map[string]string{"Authorization": "Bearer " + apiKey}
	body := imageAPIRequest{Model: c.imageModel, Prompt: prompt, Size: size}

	var resp imageAPIResponse
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/images/generations", headers, body, &resp); err != nil {
		imagesTotal.WithLabelValues(outcomeError).Inc()
		return "", fmt.Errorf("generate image: %w", err)
	}

	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		imagesTotal.WithLabelValues(outcomeError).Inc()
		return "", fmt.Errorf("generate image: %w", ErrEmptyResponse)
	}

	imagesTotal.WithLabelValues(outcomeOK).Inc()
	return resp.Data[0].B64JSON, nil
}
