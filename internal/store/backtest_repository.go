package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DonaldPG/pytaaa-web/internal/contracts"
)

// BacktestRepository implements contracts.BacktestRepository
type BacktestRepository struct {
	pool *pgxpool.Pool
}

// NewBacktestRepository creates a new backtest repository
func NewBacktestRepository(pool *pgxpool.Pool) *BacktestRepository {
	return &BacktestRepository{pool: pool}
}

// SaveBatch upserts backtest points in one round trip
func (r *BacktestRepository) SaveBatch(ctx context.Context, points []contracts.BacktestPoint) error {
	if len(points) == 0 {
		return nil
	}

	query := `
		INSERT INTO backtest_data (model_id, date, buy_hold_value, traded_value, new_highs, new_lows, selected_model)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (model_id, date) DO UPDATE SET
			buy_hold_value = EXCLUDED.buy_hold_value,
			traded_value = EXCLUDED.traded_value,
			new_highs = EXCLUDED.new_highs,
			new_lows = EXCLUDED.new_lows,
			selected_model = EXCLUDED.selected_model
	`

	batch := &pgx.Batch{}
	for _, p := range points {
		batch.Queue(query, p.ModelID, p.Date, p.BuyHoldValue, p.TradedValue, p.NewHighs, p.NewLows, p.SelectedModel)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range points {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("save backtest batch: %w", err)
		}
	}
	return nil
}

// GetSeries retrieves a model's backtest points in ascending date order.
// When days > 0 only the trailing window relative to the model's latest
// point is returned.
func (r *BacktestRepository) GetSeries(ctx context.Context, modelID uuid.UUID, days int) ([]contracts.BacktestPoint, error) {
	query := `
		SELECT model_id, date, buy_hold_value, traded_value, new_highs, new_lows, selected_model
		FROM backtest_data
		WHERE model_id = $1
		  AND ($2 <= 0 OR date >= (
			SELECT MAX(date) FROM backtest_data WHERE model_id = $1
		  ) - $2)
		ORDER BY date ASC
	`

	rows, err := r.pool.Query(ctx, query, modelID, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []contracts.BacktestPoint
	for rows.Next() {
		var p contracts.BacktestPoint
		if err := rows.Scan(&p.ModelID, &p.Date, &p.BuyHoldValue, &p.TradedValue, &p.NewHighs, &p.NewLows, &p.SelectedModel); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// ValueSeriesByModel retrieves every non-meta model's traded value
// series keyed by model name, dates ascending. This is the selection
// engine's input shape.
func (r *BacktestRepository) ValueSeriesByModel(ctx context.Context) (map[string]contracts.ValueSeries, error) {
	query := `
		SELECT m.name, b.date, b.traded_value
		FROM backtest_data b
		JOIN trading_models m ON m.id = b.model_id
		WHERE m.is_meta = FALSE
		ORDER BY m.name ASC, b.date ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	series := make(map[string]contracts.ValueSeries)
	for rows.Next() {
		var name string
		var p contracts.ValuePoint
		if err := rows.Scan(&name, &p.Date, &p.Value); err != nil {
			return nil, err
		}
		series[name] = append(series[name], p)
	}
	return series, rows.Err()
}

// LatestDate retrieves the most recent backtest date across all models.
// Returns ErrNotFound when no backtest data exists.
func (r *BacktestRepository) LatestDate(ctx context.Context) (time.Time, error) {
	var latest *time.Time
	err := r.pool.QueryRow(ctx, `SELECT MAX(date) FROM backtest_data`).Scan(&latest)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, err
	}
	if latest == nil {
		return time.Time{}, ErrNotFound
	}
	return *latest, nil
}

// DeleteByModel removes every backtest point for a model
func (r *BacktestRepository) DeleteByModel(ctx context.Context, modelID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM backtest_data WHERE model_id = $1`, modelID)
	return err
}
