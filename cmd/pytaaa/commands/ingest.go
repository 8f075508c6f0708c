package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DonaldPG/pytaaa-web/internal/contracts"
	"github.com/DonaldPG/pytaaa-web/internal/ingest"
	"github.com/DonaldPG/pytaaa-web/internal/store"
	"github.com/DonaldPG/pytaaa-web/pkg/config"
	"github.com/DonaldPG/pytaaa-web/pkg/database"
	"github.com/DonaldPG/pytaaa-web/pkg/logger"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest a model's .params data files",
	Long: `Ingest a model's .params data files into the database.

Reads PyTAAA_status.params, PyTAAA_holdings.params, PyTAAA_ranks.params
and pyTAAAweb_backtestPortfolioValue.params from the data directory.
Missing files are skipped. With --remote-url the files are downloaded
into the data directory first.

Example:
  go run ./cmd/pytaaa ingest --data-dir ./data/naz100_pine --model naz100_pine
  go run ./cmd/pytaaa ingest --data-dir ./data/meta --model pytaaa_meta --meta --overwrite
  go run ./cmd/pytaaa ingest --data-dir ./data/sp500_hma --model sp500_hma --index SP_500`,
	RunE: runIngest,
}

var (
	ingestDataDir     string
	ingestModel       string
	ingestIndex       string
	ingestDescription string
	ingestMeta        bool
	ingestOverwrite   bool
	ingestRemoteURL   string
)

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestDataDir, "data-dir", "", "directory holding the .params files (required)")
	ingestCmd.Flags().StringVar(&ingestModel, "model", "", "model name (required)")
	ingestCmd.Flags().StringVar(&ingestIndex, "index", string(contracts.IndexNasdaq100), "index universe (NASDAQ_100|SP_500)")
	ingestCmd.Flags().StringVar(&ingestDescription, "description", "", "model description")
	ingestCmd.Flags().BoolVar(&ingestMeta, "meta", false, "mark the model as a meta-model")
	ingestCmd.Flags().BoolVar(&ingestOverwrite, "overwrite", false, "clear the model's existing data first")
	ingestCmd.Flags().StringVar(&ingestRemoteURL, "remote-url", "", "download the files from this base URL first")
	ingestCmd.MarkFlagRequired("data-dir")
	ingestCmd.MarkFlagRequired("model")
}

func runIngest(cmd *cobra.Command, args []string) error {
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

	ctx := context.Background()

	if ingestRemoteURL != "" {
		fetcher := ingest.NewFetcher(log, cfg.Ingest.RequestsPerSecond)
		fetched, err := fetcher.FetchDataFiles(ctx, ingestRemoteURL, ingestDataDir)
		if err != nil {
			return fmt.Errorf("fetch remote files: %w", err)
		}
		fmt.Printf("Fetched %d files from %s\n", len(fetched), ingestRemoteURL)
	}

	service := ingest.NewService(
		store.NewModelRepository(db.Pool),
		store.NewPerformanceRepository(db.Pool),
		store.NewSnapshotRepository(db.Pool),
		store.NewBacktestRepository(db.Pool),
		store.NewRankRepository(db.Pool),
		log,
		nil,
	)

	summary, err := service.Run(ctx, ingest.Options{
		DataDir:     ingestDataDir,
		ModelName:   ingestModel,
		IndexType:   contracts.IndexType(ingestIndex),
		Description: ingestDescription,
		IsMeta:      ingestMeta,
		Overwrite:   ingestOverwrite,
	})
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	fmt.Printf("Ingested %s (%s)\n", summary.Model.Name, summary.Model.ID)
	fmt.Printf("  performance records: %d\n", summary.Performance)
	fmt.Printf("  snapshots:           %d\n", summary.Snapshots)
	fmt.Printf("  rank entries:        %d\n", summary.Ranks)
	fmt.Printf("  backtest points:     %d\n", summary.Backtest)
	return nil
}
