// Package mcp exposes Reddit search and thread retrieval as MCP tools over stdio.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/abdulachik/threadsmith/internal/reddit"
)

// Reddit is the retrieval surface the tools need.
type Reddit interface {
	Search(ctx context.Context, opts reddit.SearchOptions) ([]reddit.Post, error)
	FetchThread(ctx context.Context, permalink string) (*reddit.Thread, error)
}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

var toolRegistry = map[string]toolEntry{
	"reddit_search": {
		def:     searchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearch },
	},
	"reddit_thread": {
		def:     threadToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleThread },
	},
}

// NewServer creates an MCP server with the Reddit tools registered.
func NewServer(rd Reddit, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"threadsmith",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(rd)
	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run serves the tools over stdio until stdin closes.
func Run(rd Reddit, version string) error {
	return server.ServeStdio(NewServer(rd, version))
}
