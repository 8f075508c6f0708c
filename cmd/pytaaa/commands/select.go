package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/DonaldPG/pytaaa-web/internal/selection"
	"github.com/DonaldPG/pytaaa-web/internal/store"
	"github.com/DonaldPG/pytaaa-web/pkg/config"
	"github.com/DonaldPG/pytaaa-web/pkg/database"
)

// selectCmd represents the select command
var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Run the model selection engine",
	Long: `Run the model selection engine against the stored backtest data.

Ranks every non-meta model over the configured lookback windows and
prints the selected model, the confidence margin and the aggregate
ranks as JSON.

Example:
  go run ./cmd/pytaaa select
  go run ./cmd/pytaaa select --date 2024-06-28 --lookbacks 55,157,174`,
	RunE: runSelect,
}

var (
	selectDate      string
	selectLookbacks string
)

func init() {
	rootCmd.AddCommand(selectCmd)

	selectCmd.Flags().StringVar(&selectDate, "date", "", "target date YYYY-MM-DD (default: latest backtest date)")
	selectCmd.Flags().StringVar(&selectLookbacks, "lookbacks", "", "comma-separated lookback days (default 55,157,174)")
}

func runSelect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	selCfg := selection.DefaultConfig()
	if selectLookbacks != "" {
		lookbacks, err := config.ParseLookbacks(selectLookbacks)
		if err != nil {
			return fmt.Errorf("invalid --lookbacks: %w", err)
		}
		selCfg.LookbackPeriods = lookbacks
	}

	selector, err := selection.NewSelector(selCfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	backtests := store.NewBacktestRepository(db.Pool)

	targetDate := time.Now().UTC().Truncate(24 * time.Hour)
	if selectDate != "" {
		targetDate, err = time.Parse("2006-01-02", selectDate)
		if err != nil {
			return fmt.Errorf("invalid --date (expected YYYY-MM-DD): %w", err)
		}
	} else if latest, err := backtests.LatestDate(ctx); err == nil {
		targetDate = latest
	}

	data, err := backtests.ValueSeriesByModel(ctx)
	if err != nil {
		return fmt.Errorf("load backtest series: %w", err)
	}

	result := selector.SelectBestModel(data, targetDate)

	out := map[string]interface{}{
		"target_date":      targetDate.Format("2006-01-02"),
		"lookback_periods": selCfg.LookbackPeriods,
		"selected_model":   result.SelectedModel,
		"confidence":       result.Confidence,
		"all_ranks":        result.AllRanks,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
