package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/abdulachik/threadsmith/internal/db"
	apperrors "github.com/abdulachik/threadsmith/internal/errors"
	"github.com/abdulachik/threadsmith/internal/generator"
	"github.com/abdulachik/threadsmith/internal/reddit"
)

const (
	defaultDraftLimit = 50
	maxDraftLimit     = 500
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	apiErr := apperrors.FromError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		slog.Error("request failed", "code", apiErr.Code, "error", err)
	}
	writeJSON(w, apiErr.Status, map[string]any{"error": apiErr})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.NewInvalidRequest("invalid JSON body: " + err.Error())
	}
	return nil
}

// parseTitleOnly reads the titleOnly flag, which defaults to true when absent.
func parseTitleOnly(raw string) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperrors.NewInvalidRequest("titleOnly must be true or false")
	}
	return b, nil
}

// handleSearch handles GET /api/reddit/search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	titleOnly, err := parseTitleOnly(q.Get("titleOnly"))
	if err != nil {
		writeError(w, err)
		return
	}

	opts := reddit.SearchOptions{
		Query:     q.Get("q"),
		Sort:      reddit.Sort(q.Get("sort")),
		Window:    reddit.TimeWindow(q.Get("t")),
		TitleOnly: titleOnly,
		Order:     reddit.Order(q.Get("order")),
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, apperrors.NewInvalidRequest("limit must be a non-negative integer"))
			return
		}
		opts.Limit = limit
	}

	posts, err := s.deps.Reddit.Search(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

// handleThread handles GET /api/reddit/post.
func (s *Server) handleThread(w http.ResponseWriter, r *http.Request) {
	permalink := r.URL.Query().Get("permalink")
	if strings.TrimSpace(permalink) == "" {
		writeError(w, apperrors.NewInvalidRequest("permalink is required"))
		return
	}

	thread, err := s.deps.Reddit.FetchThread(r.Context(), permalink)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"post":     thread.Post,
		"comments": thread.Comments,
	})
}

type generateRequest struct {
	generator.Request
	Permalink string `json:"permalink,omitempty"`
}

type generateResponse struct {
	Sorani      string `json:"sorani"`
	ImagePrompt string `json:"imagePrompt"`
	DraftID     string `json:"draftId,omitempty"`
}

// handleGenerate handles POST /api/claude and POST /api/openai-post.
func (s *Server) handleGenerate(provider string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gen := s.deps.Claude
		if provider == generator.ProviderOpenAI {
			gen = s.deps.OpenAI
		}
		if gen == nil {
			writeError(w, apperrors.NewInvalidRequest(provider+" generation is not configured"))
			return
		}

		var req generateRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, err)
			return
		}

		result, err := gen.Generate(r.Context(), req.Request)
		if err != nil {
			writeError(w, err)
			return
		}

		resp := generateResponse{Sorani: result.Post, ImagePrompt: result.ImagePrompt}

		if s.deps.Drafts != nil {
			draft, err := s.deps.Drafts.CreateDraft(r.Context(), db.CreateDraftParams{
				Permalink:   req.Permalink,
				Provider:    result.Provider,
				Model:       result.Model,
				Style:       req.Style,
				Hook:        req.Hook,
				PostText:    result.Post,
				ImagePrompt: result.ImagePrompt,
			})
			if err != nil {
				slog.Warn("failed to save draft", "provider", provider, "error", err)
			} else {
				resp.DraftID = draft.ID
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// handleImage handles POST /api/image.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	if s.deps.Images == nil {
		writeError(w, apperrors.NewInvalidRequest("image generation is not configured"))
		return
	}

	var req generator.ImageRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	b64, err := s.deps.Images.GenerateImage(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"b64": b64})
}

// handleListDrafts handles GET /api/drafts.
func (s *Server) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	if s.deps.Drafts == nil {
		writeJSON(w, http.StatusOK, map[string]any{"drafts": []db.Draft{}})
		return
	}

	limit := defaultDraftLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, apperrors.NewInvalidRequest("limit must be a positive integer"))
			return
		}
		limit = min(n, maxDraftLimit)
	}

	drafts, err := s.deps.Drafts.ListDrafts(r.Context(), int64(limit))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"drafts": drafts})
}

// handleGetDraft handles GET /api/drafts/{id}.
func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	if s.deps.Drafts == nil {
		writeError(w, apperrors.NewNotFound("draft history is disabled"))
		return
	}

	draft, err := s.deps.Drafts.GetDraft(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, draft)
}

// handleDeleteDraft handles DELETE /api/drafts/{id}.
func (s *Server) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	if s.deps.Drafts == nil {
		writeError(w, apperrors.NewNotFound("draft history is disabled"))
		return
	}

	if err := s.deps.Drafts.DeleteDraft(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleHealthz reports per-host Reddit health. The service is degraded,
// not down, while no host is healthy.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	health := s.deps.Reddit.Health()

	status := "ok"
	if !health.AnyHealthy() {
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": status,
		"reddit": health.Snapshot(),
	})
}
