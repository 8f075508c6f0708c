// Package store persists trading models, performance series, portfolio
// snapshots, backtests and stock rankings in Postgres. Each repository
// is a thin struct over a pgx pool implementing its contracts interface.
package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates every table the service needs. Statements are
// idempotent so migrate can run on every deploy.
const Schema = `
CREATE TABLE IF NOT EXISTS trading_models (
    id UUID PRIMARY KEY,
    name TEXT UNIQUE NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    index_type TEXT NOT NULL,
    is_meta BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS performance_metrics (
    model_id UUID NOT NULL REFERENCES trading_models(id) ON DELETE CASCADE,
    date DATE NOT NULL,
    base_value DOUBLE PRECISION NOT NULL,
    signal INTEGER NOT NULL DEFAULT 0,
    traded_value DOUBLE PRECISION NOT NULL,
    daily_return DOUBLE PRECISION,
    PRIMARY KEY (model_id, date)
);

CREATE TABLE IF NOT EXISTS portfolio_snapshots (
    id UUID PRIMARY KEY,
    model_id UUID NOT NULL REFERENCES trading_models(id) ON DELETE CASCADE,
    date DATE NOT NULL,
    total_value DOUBLE PRECISION NOT NULL,
    active_sub_model_id UUID REFERENCES trading_models(id),
    UNIQUE (model_id, date)
);

CREATE TABLE IF NOT EXISTS portfolio_holdings (
    id BIGSERIAL PRIMARY KEY,
    snapshot_id UUID NOT NULL REFERENCES portfolio_snapshots(id) ON DELETE CASCADE,
    ticker TEXT NOT NULL,
    shares DOUBLE PRECISION NOT NULL,
    purchase_price DOUBLE PRECISION NOT NULL,
    current_price DOUBLE PRECISION NOT NULL,
    weight DOUBLE PRECISION NOT NULL DEFAULT 0,
    rank INTEGER,
    buy_date DATE
);

CREATE TABLE IF NOT EXISTS backtest_data (
    model_id UUID NOT NULL REFERENCES trading_models(id) ON DELETE CASCADE,
    date DATE NOT NULL,
    buy_hold_value DOUBLE PRECISION NOT NULL,
    traded_value DOUBLE PRECISION NOT NULL,
    new_highs INTEGER NOT NULL DEFAULT 0,
    new_lows INTEGER NOT NULL DEFAULT 0,
    selected_model TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (model_id, date)
);

CREATE TABLE IF NOT EXISTS stock_ranks (
    model_id UUID NOT NULL REFERENCES trading_models(id) ON DELETE CASCADE,
    date DATE NOT NULL,
    ticker TEXT NOT NULL,
    rank INTEGER NOT NULL,
    score DOUBLE PRECISION,
    PRIMARY KEY (model_id, date, ticker)
);

CREATE INDEX IF NOT EXISTS idx_performance_metrics_date ON performance_metrics(model_id, date DESC);
CREATE INDEX IF NOT EXISTS idx_portfolio_snapshots_date ON portfolio_snapshots(model_id, date DESC);
CREATE INDEX IF NOT EXISTS idx_backtest_data_date ON backtest_data(model_id, date DESC);
CREATE INDEX IF NOT EXISTS idx_stock_ranks_date ON stock_ranks(model_id, date DESC);
`

// Migrate applies the schema
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, Schema)
	return err
}
