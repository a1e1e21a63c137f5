package main

import (
	"context"
	"fmt"

	"github.com/abdulachik/threadsmith/internal/config"
	"github.com/abdulachik/threadsmith/internal/db"
	"github.com/spf13/cobra"
)

var (
	draftsLimit     int
	draftsPermalink string
)

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "Inspect saved drafts",
	Long: `List, show and delete drafts saved by generate and the HTTP API.

Examples:
  threadsmith drafts list --limit 10
  threadsmith drafts list --permalink /r/golang/comments/abc123/why_go/
  threadsmith drafts show 01J9Z8...
  threadsmith drafts delete 01J9Z8...`,
}

var draftsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent drafts",
	RunE:  runDraftsList,
}

var draftsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a draft",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftsShow,
}

var draftsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a draft",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftsDelete,
}

func init() {
	draftsListCmd.Flags().IntVar(&draftsLimit, "limit", 20, "Maximum drafts to list")
	draftsListCmd.Flags().StringVar(&draftsPermalink, "permalink", "", "Only drafts generated from this thread")
	draftsCmd.AddCommand(draftsListCmd, draftsShowCmd, draftsDeleteCmd)
	rootCmd.AddCommand(draftsCmd)
}

func openStore(ctx context.Context) (*db.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

func runDraftsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	var drafts []db.Draft
	if draftsPermalink != "" {
		drafts, err = store.ListDraftsByPermalink(ctx, draftsPermalink, int64(draftsLimit))
	} else {
		drafts, err = store.ListDrafts(ctx, int64(draftsLimit))
	}
	if err != nil {
		return fmt.Errorf("list drafts: %w", err)
	}

	total, err := store.CountDrafts(ctx)
	if err != nil {
		return fmt.Errorf("count drafts: %w", err)
	}

	fmt.Printf("Drafts (%d of %d):\n\n", len(drafts), total)
	for _, d := range drafts {
		fmt.Printf("  %s  %s  %-7s %s/%s\n", d.ID, d.CreatedAt.Format("2006-01-02 15:04"), d.Provider, d.Style, d.Hook)
		if d.Permalink != "" {
			fmt.Printf("    %s\n", d.Permalink)
		}
	}
	return nil
}

func runDraftsShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	d, err := store.GetDraft(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get draft: %w", err)
	}

	fmt.Printf("ID:        %s\n", d.ID)
	fmt.Printf("Created:   %s\n", d.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Provider:  %s (%s)\n", d.Provider, d.Model)
	fmt.Printf("Style:     %s\n", d.Style)
	fmt.Printf("Hook:      %s\n", d.Hook)
	if d.Permalink != "" {
		fmt.Printf("Thread:    %s\n", d.Permalink)
	}
	fmt.Println()
	fmt.Println(d.PostText)
	fmt.Println()
	fmt.Println("Image prompt:")
	fmt.Println(d.ImagePrompt)
	return nil
}

func runDraftsDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeleteDraft(ctx, args[0]); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}

	fmt.Printf("Deleted draft %s\n", args[0])
	return nil
}
