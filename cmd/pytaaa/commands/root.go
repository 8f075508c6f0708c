package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pytaaa",
	Short: "pytaaa-web - trading model dashboard backend",
	Long: `pytaaa-web CLI

REST backend and data pipeline for tactical asset allocation trading
models: ingests the models' .params files, stores them in Postgres and
serves performance, holdings, backtest and model selection endpoints.

Usage:
  go run ./cmd/pytaaa [command]

Examples:
  go run ./cmd/pytaaa migrate
  go run ./cmd/pytaaa ingest --data-dir ./data/naz100_pine --model naz100_pine
  go run ./cmd/pytaaa api
  go run ./cmd/pytaaa select --lookbacks 55,157,174`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}
