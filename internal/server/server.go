// Package server exposes search, thread retrieval, generation and draft
// history over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abdulachik/threadsmith/internal/db"
	"github.com/abdulachik/threadsmith/internal/generator"
	"github.com/abdulachik/threadsmith/internal/reddit"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Reddit is the retrieval surface the server needs.
type Reddit interface {
	Search(ctx context.Context, opts reddit.SearchOptions) ([]reddit.Post, error)
	FetchThread(ctx context.Context, permalink string) (*reddit.Thread, error)
	Health() *reddit.Health
}

// Drafts is the draft history the server writes and reads.
type Drafts interface {
	CreateDraft(ctx context.Context, arg db.CreateDraftParams) (db.Draft, error)
	GetDraft(ctx context.Context, id string) (db.Draft, error)
	ListDrafts(ctx context.Context, limit int64) ([]db.Draft, error)
	DeleteDraft(ctx context.Context, id string) error
}

// Images generates images from prompts.
type Images interface {
	GenerateImage(ctx context.Context, req generator.ImageRequest) (string, error)
}

// Deps holds the server's collaborators. Drafts may be nil, in which case
// generated posts are returned but not stored.
type Deps struct {
	Reddit Reddit
	Claude generator.Generator
	OpenAI generator.Generator
	Images Images
	Drafts Drafts
}

// Server is the HTTP API.
type Server struct {
	deps   Deps
	router *mux.Router
}

// New creates a server and registers its routes.
func New(deps Deps) *Server {
	s := &Server{deps: deps, router: mux.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(instrument)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/reddit/search", s.handleSearch).Methods(http.MethodGet)
	api.HandleFunc("/reddit/post", s.handleThread).Methods(http.MethodGet)

	api.HandleFunc("/claude", s.handleGenerate(generator.ProviderClaude)).Methods(http.MethodPost)
	api.HandleFunc("/openai-post", s.handleGenerate(generator.ProviderOpenAI)).Methods(http.MethodPost)
	api.HandleFunc("/image", s.handleImage).Methods(http.MethodPost)

	api.HandleFunc("/drafts", s.handleListDrafts).Methods(http.MethodGet)
	api.HandleFunc("/drafts/{id}", s.handleGetDraft).Methods(http.MethodGet)
	api.HandleFunc("/drafts/{id}", s.handleDeleteDraft).Methods(http.MethodDelete)

	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler())
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
