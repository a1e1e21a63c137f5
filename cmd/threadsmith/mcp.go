package main

import (
	"fmt"

	"github.com/abdulachik/threadsmith/internal/app"
	"github.com/abdulachik/threadsmith/internal/config"
	"github.com/abdulachik/threadsmith/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve Reddit tools over MCP stdio",
	Long:  `Expose reddit_search and reddit_thread as Model Context Protocol tools on stdin/stdout.`,
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	return mcp.Run(app.NewReddit(cfg), version)
}
