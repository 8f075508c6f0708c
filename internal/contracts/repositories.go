package contracts

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ModelWithLatest is a trading model together with its most recent
// traded value, for list views.
type ModelWithLatest struct {
	TradingModel
	LatestValue *float64   `json:"latest_value,omitempty"`
	LatestDate  *time.Time `json:"latest_date,omitempty"`
}

// ModelRepository manages trading model records
type ModelRepository interface {
	CreateOrGet(ctx context.Context, model *TradingModel) error
	GetByID(ctx context.Context, id uuid.UUID) (*TradingModel, error)
	GetByName(ctx context.Context, name string) (*TradingModel, error)
	List(ctx context.Context) ([]ModelWithLatest, error)
}

// PerformanceRepository manages daily performance records
type PerformanceRepository interface {
	SaveBatch(ctx context.Context, metrics []PerformanceMetric) error
	GetSeries(ctx context.Context, modelID uuid.UUID, days int) ([]PerformanceMetric, error)
	DeleteByModel(ctx context.Context, modelID uuid.UUID) error
}

// SnapshotRepository manages portfolio snapshots and their holdings
type SnapshotRepository interface {
	Save(ctx context.Context, snapshot *PortfolioSnapshot) error
	GetLatest(ctx context.Context, modelID uuid.UUID) (*PortfolioSnapshot, error)
	GetByDate(ctx context.Context, modelID uuid.UUID, date time.Time) (*PortfolioSnapshot, error)
	ListDates(ctx context.Context, modelID uuid.UUID) ([]time.Time, error)
	DeleteByModel(ctx context.Context, modelID uuid.UUID) error
}

// BacktestRepository manages backtest value series
type BacktestRepository interface {
	SaveBatch(ctx context.Context, points []BacktestPoint) error
	GetSeries(ctx context.Context, modelID uuid.UUID, days int) ([]BacktestPoint, error)
	ValueSeriesByModel(ctx context.Context) (map[string]ValueSeries, error)
	LatestDate(ctx context.Context) (time.Time, error)
	DeleteByModel(ctx context.Context, modelID uuid.UUID) error
}

// RankRepository manages daily top-N stock rankings
type RankRepository interface {
	SaveBatch(ctx context.Context, modelID uuid.UUID, ranks []StockRank) error
	GetByDate(ctx context.Context, modelID uuid.UUID, date time.Time) ([]StockRank, error)
	LatestDate(ctx context.Context, modelID uuid.UUID) (time.Time, error)
	DeleteByModel(ctx context.Context, modelID uuid.UUID) error
}
