package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/abdulachik/threadsmith/internal/app"
	"github.com/abdulachik/threadsmith/internal/config"
	"github.com/abdulachik/threadsmith/internal/generator"
	"github.com/spf13/cobra"
)

var threadJSON bool

var threadCmd = &cobra.Command{
	Use:   "thread <permalink>",
	Short: "Fetch a Reddit thread",
	Long: `Fetch a thread's post and top comments and print the text that would
be sent to a generator.

Examples:
  threadsmith thread /r/golang/comments/abc123/why_go/
  threadsmith thread --json https://www.reddit.com/r/golang/comments/abc123/why_go/`,
	Args: cobra.ExactArgs(1),
	RunE: runThread,
}

func init() {
	threadCmd.Flags().BoolVar(&threadJSON, "json", false, "Print the thread as JSON")
	rootCmd.AddCommand(threadCmd)
}

func runThread(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	thread, err := app.NewReddit(cfg).FetchThread(ctx, args[0])
	if err != nil {
		return fmt.Errorf("fetch thread: %w", err)
	}

	if threadJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(thread)
	}

	fmt.Println(generator.ComposeThreadText(thread, generator.DefaultPromptComments))
	return nil
}
