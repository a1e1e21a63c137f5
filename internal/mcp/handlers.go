package mcp

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"

	apperrors "github.com/abdulachik/threadsmith/internal/errors"
	"github.com/abdulachik/threadsmith/internal/generator"
	"github.com/abdulachik/threadsmith/internal/reddit"
)

var searchToolDef = mcp.NewTool("reddit_search",
	mcp.WithDescription("Search Reddit for discussion threads. Falls back across hosts, sorts and time windows, then samples popular subreddits, so it returns posts whenever Reddit is reachable at all."),
	mcp.WithString("q", mcp.Required(), mcp.Description("Search query")),
	mcp.WithString("sort", mcp.Description("Sort order"), mcp.Enum("relevance", "hot", "new", "top", "trending")),
	mcp.WithString("t", mcp.Description("Time window"), mcp.Enum("hour", "day", "week", "month", "year", "all")),
	mcp.WithBoolean("title_only", mcp.Description("Match the query against titles only (default true)")),
	mcp.WithString("order", mcp.Description("Client-side ordering"), mcp.Enum("none", "upvotes", "comments")),
	mcp.WithNumber("limit", mcp.Description("Maximum posts to return (1-100, default 50)"), mcp.Min(1), mcp.Max(100)),
)

var threadToolDef = mcp.NewTool("reddit_thread",
	mcp.WithDescription("Fetch a Reddit thread's post and top comments, plus the composed prompt text."),
	mcp.WithString("permalink", mcp.Required(), mcp.Description("Thread permalink path or full reddit.com URL")),
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	reddit Reddit
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(rd Reddit) *Handlers {
	return &Handlers{reddit: rd}
}

// SearchRequest represents the arguments for reddit_search.
type SearchRequest struct {
	Query     string `json:"q"`
	Sort      string `json:"sort,omitempty"`
	Window    string `json:"t,omitempty"`
	TitleOnly *bool  `json:"title_only,omitempty"`
	Order     string `json:"order,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// ThreadRequest represents the arguments for reddit_thread.
type ThreadRequest struct {
	Permalink string `json:"permalink"`
}

// ThreadResult is the reddit_thread payload.
type ThreadResult struct {
	Post     reddit.Post      `json:"post"`
	Comments []reddit.Comment `json:"comments"`
	Text     string           `json:"text"`
}

// HandleSearch handles the reddit_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(apperrors.NewInvalidRequest(err.Error())), nil
	}

	titleOnly := true
	if input.TitleOnly != nil {
		titleOnly = *input.TitleOnly
	}

	posts, err := h.reddit.Search(ctx, reddit.SearchOptions{
		Query:     input.Query,
		Limit:     input.Limit,
		Sort:      reddit.Sort(input.Sort),
		Window:    reddit.TimeWindow(input.Window),
		TitleOnly: titleOnly,
		Order:     reddit.Order(input.Order),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{"posts": posts})
}

// HandleThread handles the reddit_thread tool call.
func (h *Handlers) HandleThread(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ThreadRequest](req)
	if err != nil {
		return errorResult(apperrors.NewInvalidRequest(err.Error())), nil
	}

	thread, err := h.reddit.FetchThread(ctx, input.Permalink)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(ThreadResult{
		Post:     thread.Post,
		Comments: thread.Comments,
		Text:     generator.ComposeThreadText(thread, generator.DefaultPromptComments),
	})
}

// errorResult creates an MCP error result. Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	apiErr := apperrors.FromError(err)

	msg := apiErr.Message
	if apiErr.Status >= http.StatusInternalServerError && apiErr.Code == apperrors.CodeInternal {
		msg = "an internal error occurred"
	}

	payload := map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": msg,
			"status":  apiErr.Status,
		},
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
