// Package ingest loads the .params data files of a trading model into
// the store, creating the model record on first sight. It can read a
// local data directory or mirror the files from a remote host first.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/DonaldPG/pytaaa-web/internal/contracts"
	"github.com/DonaldPG/pytaaa-web/internal/parsers"
	"github.com/DonaldPG/pytaaa-web/pkg/logger"
)

// Data file names produced by the trading models
const (
	StatusFile   = "PyTAAA_status.params"
	HoldingsFile = "PyTAAA_holdings.params"
	RanksFile    = "PyTAAA_ranks.params"
	BacktestFile = "pyTAAAweb_backtestPortfolioValue.params"
)

// DataFiles lists every file name an ingest run looks for
var DataFiles = []string{StatusFile, HoldingsFile, RanksFile, BacktestFile}

// Notifier receives a signal after a model's data has changed
type Notifier interface {
	ModelUpdated(name string)
}

// Options describes one ingest run
type Options struct {
	DataDir     string
	ModelName   string
	IndexType   contracts.IndexType
	Description string
	IsMeta      bool
	Overwrite   bool
}

// Summary reports what an ingest run loaded
type Summary struct {
	Model       contracts.TradingModel `json:"model"`
	Performance int                    `json:"performance_records"`
	Snapshots   int                    `json:"snapshots"`
	Ranks       int                    `json:"rank_entries"`
	Backtest    int                    `json:"backtest_points"`
}

// Service orchestrates parse and store for one model's data directory
type Service struct {
	models      contracts.ModelRepository
	performance contracts.PerformanceRepository
	snapshots   contracts.SnapshotRepository
	backtests   contracts.BacktestRepository
	ranks       contracts.RankRepository
	log         *logger.Logger
	notifier    Notifier
}

// NewService creates an ingest service. notifier may be nil.
func NewService(
	models contracts.ModelRepository,
	performance contracts.PerformanceRepository,
	snapshots contracts.SnapshotRepository,
	backtests contracts.BacktestRepository,
	ranks contracts.RankRepository,
	log *logger.Logger,
	notifier Notifier,
) *Service {
	return &Service{
		models:      models,
		performance: performance,
		snapshots:   snapshots,
		backtests:   backtests,
		ranks:       ranks,
		log:         log,
		notifier:    notifier,
	}
}

// Run ingests every data file present in opts.DataDir. Missing files
// are skipped; a directory with no recognized files is an error.
func (s *Service) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.ModelName == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if !opts.IndexType.Valid() {
		return nil, fmt.Errorf("invalid index type %q", opts.IndexType)
	}

	model := &contracts.TradingModel{
		Name:        opts.ModelName,
		Description: opts.Description,
		IndexType:   opts.IndexType,
		IsMeta:      opts.IsMeta,
	}
	if err := s.models.CreateOrGet(ctx, model); err != nil {
		return nil, err
	}

	log := s.log.WithFields(map[string]interface{}{
		"model":    model.Name,
		"data_dir": opts.DataDir,
	})

	if opts.Overwrite {
		log.Info("Overwrite requested, clearing existing data")
		if err := s.clearModelData(ctx, model.ID); err != nil {
			return nil, fmt.Errorf("clear existing data: %w", err)
		}
	}

	summary := &Summary{Model: *model}

	if path, ok := dataFile(opts.DataDir, StatusFile); ok {
		n, err := s.ingestStatus(ctx, model.ID, path)
		if err != nil {
			return nil, err
		}
		summary.Performance = n
	}
	if path, ok := dataFile(opts.DataDir, HoldingsFile); ok {
		n, err := s.ingestHoldings(ctx, model.ID, path)
		if err != nil {
			return nil, err
		}
		summary.Snapshots = n
	}
	if path, ok := dataFile(opts.DataDir, RanksFile); ok {
		n, err := s.ingestRanks(ctx, model.ID, path)
		if err != nil {
			return nil, err
		}
		summary.Ranks = n
	}
	if path, ok := dataFile(opts.DataDir, BacktestFile); ok {
		n, err := s.ingestBacktest(ctx, model.ID, path)
		if err != nil {
			return nil, err
		}
		summary.Backtest = n
	}

	total := summary.Performance + summary.Snapshots + summary.Ranks + summary.Backtest
	if total == 0 {
		return nil, fmt.Errorf("no data files found in %s", opts.DataDir)
	}

	log.WithFields(map[string]interface{}{
		"performance": summary.Performance,
		"snapshots":   summary.Snapshots,
		"ranks":       summary.Ranks,
		"backtest":    summary.Backtest,
	}).Info("Ingest completed")

	if s.notifier != nil {
		s.notifier.ModelUpdated(model.Name)
	}

	return summary, nil
}

func (s *Service) clearModelData(ctx context.Context, modelID uuid.UUID) error {
	if err := s.performance.DeleteByModel(ctx, modelID); err != nil {
		return err
	}
	if err := s.snapshots.DeleteByModel(ctx, modelID); err != nil {
		return err
	}
	if err := s.backtests.DeleteByModel(ctx, modelID); err != nil {
		return err
	}
	return s.ranks.DeleteByModel(ctx, modelID)
}

func (s *Service) ingestStatus(ctx context.Context, modelID uuid.UUID, path string) (int, error) {
	records, err := parsers.ParseStatusFile(path)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", StatusFile, err)
	}

	metrics := make([]contracts.PerformanceMetric, len(records))
	for i, rec := range records {
		m := contracts.PerformanceMetric{
			ModelID:     modelID,
			Date:        rec.Date,
			BaseValue:   rec.BaseValue,
			Signal:      rec.Signal,
			TradedValue: rec.TradedValue,
		}
		if i > 0 && records[i-1].TradedValue > 0 {
			dr := (rec.TradedValue - records[i-1].TradedValue) / records[i-1].TradedValue
			m.DailyReturn = &dr
		}
		metrics[i] = m
	}

	if err := s.performance.SaveBatch(ctx, metrics); err != nil {
		return 0, err
	}
	return len(metrics), nil
}

func (s *Service) ingestHoldings(ctx context.Context, modelID uuid.UUID, path string) (int, error) {
	snapshots, err := parsers.ParseHoldingsFile(path)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", HoldingsFile, err)
	}

	for _, rec := range snapshots {
		snap := &contracts.PortfolioSnapshot{
			ModelID:    modelID,
			Date:       rec.Date,
			TotalValue: rec.TotalValue,
		}
		for _, h := range rec.Holdings {
			buyDate := h.BuyDate
			snap.Holdings = append(snap.Holdings, contracts.PortfolioHolding{
				Ticker:        h.Ticker,
				Shares:        h.Shares,
				PurchasePrice: h.PurchasePrice,
				CurrentPrice:  h.CurrentPrice,
				Weight:        h.Weight,
				BuyDate:       &buyDate,
			})
		}
		if err := s.snapshots.Save(ctx, snap); err != nil {
			return 0, err
		}
	}
	return len(snapshots), nil
}

func (s *Service) ingestRanks(ctx context.Context, modelID uuid.UUID, path string) (int, error) {
	ranks, err := parsers.ParseRanksFile(path)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", RanksFile, err)
	}
	if err := s.ranks.SaveBatch(ctx, modelID, ranks); err != nil {
		return 0, err
	}
	return len(ranks), nil
}

func (s *Service) ingestBacktest(ctx context.Context, modelID uuid.UUID, path string) (int, error) {
	records, err := parsers.ParseBacktestFile(path)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", BacktestFile, err)
	}

	points := make([]contracts.BacktestPoint, len(records))
	for i, rec := range records {
		points[i] = contracts.BacktestPoint{
			ModelID:       modelID,
			Date:          rec.Date,
			BuyHoldValue:  rec.BuyHoldValue,
			TradedValue:   rec.TradedValue,
			NewHighs:      rec.NewHighs,
			NewLows:       rec.NewLows,
			SelectedModel: rec.SelectedModel,
		}
	}

	if err := s.backtests.SaveBatch(ctx, points); err != nil {
		return 0, err
	}
	return len(points), nil
}

// dataFile reports whether name exists under dir
func dataFile(dir, name string) (string, bool) {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}
