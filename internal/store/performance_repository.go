package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DonaldPG/pytaaa-web/internal/contracts"
)

// PerformanceRepository implements contracts.PerformanceRepository
type PerformanceRepository struct {
	pool *pgxpool.Pool
}

// NewPerformanceRepository creates a new performance repository
func NewPerformanceRepository(pool *pgxpool.Pool) *PerformanceRepository {
	return &PerformanceRepository{pool: pool}
}

// SaveBatch upserts daily performance records in one round trip
func (r *PerformanceRepository) SaveBatch(ctx context.Context, metrics []contracts.PerformanceMetric) error {
	if len(metrics) == 0 {
		return nil
	}

	query := `
		INSERT INTO performance_metrics (model_id, date, base_value, signal, traded_value, daily_return)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (model_id, date) DO UPDATE SET
			base_value = EXCLUDED.base_value,
			signal = EXCLUDED.signal,
			traded_value = EXCLUDED.traded_value,
			daily_return = EXCLUDED.daily_return
	`

	batch := &pgx.Batch{}
	for _, m := range metrics {
		batch.Queue(query, m.ModelID, m.Date, m.BaseValue, m.Signal, m.TradedValue, m.DailyReturn)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range metrics {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("save performance batch: %w", err)
		}
	}
	return nil
}

// GetSeries retrieves a model's performance records in ascending date
// order. When days > 0 only the trailing window relative to the model's
// latest record is returned.
func (r *PerformanceRepository) GetSeries(ctx context.Context, modelID uuid.UUID, days int) ([]contracts.PerformanceMetric, error) {
	query := `
		SELECT model_id, date, base_value, signal, traded_value, daily_return
		FROM performance_metrics
		WHERE model_id = $1
		  AND ($2 <= 0 OR date >= (
			SELECT MAX(date) FROM performance_metrics WHERE model_id = $1
		  ) - $2)
		ORDER BY date ASC
	`

	rows, err := r.pool.Query(ctx, query, modelID, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metrics []contracts.PerformanceMetric
	for rows.Next() {
		var m contracts.PerformanceMetric
		if err := rows.Scan(&m.ModelID, &m.Date, &m.BaseValue, &m.Signal, &m.TradedValue, &m.DailyReturn); err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// DeleteByModel removes every performance record for a model
func (r *PerformanceRepository) DeleteByModel(ctx context.Context, modelID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM performance_metrics WHERE model_id = $1`, modelID)
	return err
}
