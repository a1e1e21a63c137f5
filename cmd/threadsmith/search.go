package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/abdulachik/threadsmith/internal/app"
	"github.com/abdulachik/threadsmith/internal/config"
	"github.com/abdulachik/threadsmith/internal/reddit"
	"github.com/spf13/cobra"
)

var (
	searchSort      string
	searchWindow    string
	searchOrder     string
	searchLimit     int
	searchTitleOnly bool
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search Reddit",
	Long: `Search Reddit, falling back across hosts, sorts and time windows and
finally sampling popular subreddits.

Examples:
  threadsmith search "ai marketing"
  threadsmith search --sort top --t month --order upvotes "rust vs go"
  threadsmith search --title-only=false --json "kubernetes"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchSort, "sort", "relevance", "Sort: relevance, hot, new, top, trending")
	searchCmd.Flags().StringVar(&searchWindow, "t", "day", "Time window: hour, day, week, month, year, all")
	searchCmd.Flags().StringVar(&searchOrder, "order", "none", "Client-side order: none, upvotes, comments")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 25, "Maximum posts to return (max 100)")
	searchCmd.Flags().BoolVar(&searchTitleOnly, "title-only", true, "Match the query against titles only")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	posts, err := app.NewReddit(cfg).Search(ctx, reddit.SearchOptions{
		Query:     strings.Join(args, " "),
		Limit:     searchLimit,
		Sort:      reddit.Sort(searchSort),
		Window:    reddit.TimeWindow(searchWindow),
		TitleOnly: searchTitleOnly,
		Order:     reddit.Order(searchOrder),
	})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(posts)
	}

	if len(posts) == 0 {
		fmt.Println("No posts found.")
		return nil
	}

	for i, p := range posts {
		fmt.Printf("%2d. [r/%s] %s\n", i+1, p.Subreddit, p.Title)
		fmt.Printf("    %d upvotes, %d comments  %s\n", p.Score, p.NumComments, p.Permalink)
	}
	return nil
}
