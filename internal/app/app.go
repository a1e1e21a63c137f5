package app

import (
	"context"
	"fmt"

	"github.com/abdulachik/threadsmith/internal/config"
	"github.com/abdulachik/threadsmith/internal/db"
	"github.com/abdulachik/threadsmith/internal/generator"
	"github.com/abdulachik/threadsmith/internal/reddit"
	"github.com/abdulachik/threadsmith/internal/server"
)

// App is the main application container holding all dependencies.
type App struct {
	Config *config.Config
	Store  *db.Store
	Reddit *reddit.Client
	Claude *generator.ClaudeClient
	OpenAI *generator.OpenAIClient
}

// New creates a new application instance with all dependencies wired up.
// Generators are always built: requests may carry their own API keys.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &App{
		Config: cfg,
		Store:  store,
		Reddit: NewReddit(cfg),
		Claude: generator.NewClaudeClient(generator.ClaudeConfig{
			APIKey: cfg.AnthropicAPIKey,
			Model:  cfg.AnthropicModel,
		}),
		OpenAI: generator.NewOpenAIClient(generator.OpenAIConfig{
			APIKey:     cfg.OpenAIAPIKey,
			Model:      cfg.OpenAIModel,
			ImageModel: cfg.OpenAIImageModel,
		}),
	}, nil
}

// NewReddit builds the Reddit client alone, for commands that need no database.
func NewReddit(cfg *config.Config) *reddit.Client {
	return reddit.New(reddit.Config{
		ClientID:          cfg.RedditClientID,
		ClientSecret:      cfg.RedditClientSecret,
		UserAgent:         cfg.RedditUserAgent,
		ProxyURL:          cfg.RedditProxyURL,
		Timeout:           cfg.RedditTimeout,
		RequestsPerSecond: cfg.RedditRPS,
		SampleSubreddits:  cfg.RedditSampleSubreddits,
		MaxComments:       cfg.RedditMaxComments,
	})
}

// Generator returns the generator for a provider name.
func (a *App) Generator(provider string) (generator.Generator, error) {
	switch provider {
	case generator.ProviderClaude:
		return a.Claude, nil
	case generator.ProviderOpenAI:
		return a.OpenAI, nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", generator.ErrInvalidRequest, provider)
	}
}

// Server builds the HTTP server over the app's dependencies.
func (a *App) Server() *server.Server {
	return server.New(server.Deps{
		Reddit: a.Reddit,
		Claude: a.Claude,
		OpenAI: a.OpenAI,
		Images: a.OpenAI,
		Drafts: a.Store,
	})
}

// Close closes all resources.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
