package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/DonaldPG/pytaaa-web/internal/store"
	"github.com/DonaldPG/pytaaa-web/pkg/config"
	"github.com/DonaldPG/pytaaa-web/pkg/database"
	"github.com/DonaldPG/pytaaa-web/pkg/logger"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long: `Apply the database schema.

Creates every table and index the service needs. Statements are
idempotent, so migrate is safe to run on every deploy.

Example:
  go run ./cmd/pytaaa migrate`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := store.Migrate(ctx, db.Pool); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	log.Info("Schema applied")
	fmt.Println("Schema applied")
	return nil
}
