package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abdulachik/threadsmith/internal/config"
	"github.com/abdulachik/threadsmith/internal/db"
	"github.com/spf13/cobra"
)

var migrateDown bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Run all pending database migrations to set up or update the draft history schema.

Examples:
  threadsmith migrate         # Apply pending migrations
  threadsmith migrate --down  # Revert the latest migration`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "Revert the most recently applied migration")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	slog.Info("connecting to database", "path", cfg.DatabasePath)
	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer store.Close()

	if migrateDown {
		version, err := store.Rollback(ctx)
		if err != nil {
			return fmt.Errorf("revert migration: %w", err)
		}
		if version == "" {
			slog.Info("no migrations to revert")
		} else {
			slog.Info("migration reverted", "version", version)
		}
		return nil
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("migrations completed successfully")
	return nil
}
