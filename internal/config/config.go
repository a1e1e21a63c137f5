package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Database
	DatabasePath string

	// HTTP server
	HTTPAddr string

	// Anthropic API
	AnthropicAPIKey string
	AnthropicModel  string

	// OpenAI API (posts and images)
	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIImageModel string

	// Reddit OAuth, optional
	RedditClientID     string
	RedditClientSecret string
	RedditUserAgent    string

	// Reddit retrieval
	RedditProxyURL         string
	RedditTimeout          time.Duration
	RedditRPS              float64
	RedditMaxComments      int
	RedditSampleSubreddits []string

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables.
// It automatically loads .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath:       getEnv("DATABASE_PATH", "data/threadsmith.db"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		AnthropicAPIKey:    getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:     getEnv("ANTHROPIC_MODEL", ""),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-5-mini"),
		OpenAIImageModel:   getEnv("OPENAI_IMAGE_MODEL", "gpt-image-1"),
		RedditClientID:     getEnv("REDDIT_CLIENT_ID", ""),
		RedditClientSecret: getEnv("REDDIT_CLIENT_SECRET", ""),
		RedditUserAgent:    getEnv("REDDIT_USER_AGENT", "threadsmith:v1.0.0"),
		RedditProxyURL:     getEnv("REDDIT_PROXY_URL", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),

		RedditSampleSubreddits: splitList(getEnv("REDDIT_SAMPLE_SUBREDDITS", "")),
	}

	// Parse durations
	var err error
	cfg.RedditTimeout, err = time.ParseDuration(getEnv("REDDIT_TIMEOUT", "8s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDDIT_TIMEOUT: %w", err)
	}

	// Parse numbers
	cfg.RedditRPS, err = strconv.ParseFloat(getEnv("REDDIT_RPS", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid REDDIT_RPS: %w", err)
	}

	cfg.RedditMaxComments, err = strconv.Atoi(getEnv("REDDIT_MAX_COMMENTS", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDDIT_MAX_COMMENTS: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.RedditUserAgent == "" {
		return fmt.Errorf("REDDIT_USER_AGENT is required")
	}
	if c.RedditTimeout <= 0 {
		return fmt.Errorf("REDDIT_TIMEOUT must be positive")
	}
	if c.RedditMaxComments <= 0 {
		return fmt.Errorf("REDDIT_MAX_COMMENTS must be positive")
	}
	if (c.RedditClientID == "") != (c.RedditClientSecret == "") {
		return fmt.Errorf("REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET must be set together")
	}
	return nil
}

// ValidateForServe checks configuration needed for the HTTP server.
func (c *Config) ValidateForServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	return nil
}

// ValidateForGeneration checks configuration needed to generate posts with
// the given provider ("claude" or "openai").
func (c *Config) ValidateForGeneration(provider string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	switch provider {
	case "claude":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for generation with claude")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for generation with openai")
		}
	default:
		return fmt.Errorf("invalid provider: %s (must be 'claude' or 'openai')", provider)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// splitList parses a comma-separated list, dropping blanks and a leading "r/".
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimPrefix(strings.TrimSpace(part), "r/")
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
