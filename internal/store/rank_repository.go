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

// RankRepository implements contracts.RankRepository
type RankRepository struct {
	pool *pgxpool.Pool
}

// NewRankRepository creates a new rank repository
func NewRankRepository(pool *pgxpool.Pool) *RankRepository {
	return &RankRepository{pool: pool}
}

// SaveBatch upserts ranking entries for a model in one round trip
func (r *RankRepository) SaveBatch(ctx context.Context, modelID uuid.UUID, ranks []contracts.StockRank) error {
	if len(ranks) == 0 {
		return nil
	}

	query := `
		INSERT INTO stock_ranks (model_id, date, ticker, rank, score)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (model_id, date, ticker) DO UPDATE SET
			rank = EXCLUDED.rank,
			score = EXCLUDED.score
	`

	batch := &pgx.Batch{}
	for _, entry := range ranks {
		batch.Queue(query, modelID, entry.Date, entry.Ticker, entry.Rank, entry.Score)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range ranks {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("save ranks batch: %w", err)
		}
	}
	return nil
}

// GetByDate retrieves a model's ranking for one date, best rank first
func (r *RankRepository) GetByDate(ctx context.Context, modelID uuid.UUID, date time.Time) ([]contracts.StockRank, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date, ticker, rank, score
		FROM stock_ranks
		WHERE model_id = $1 AND date = $2
		ORDER BY rank ASC
	`, modelID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ranks []contracts.StockRank
	for rows.Next() {
		var entry contracts.StockRank
		if err := rows.Scan(&entry.Date, &entry.Ticker, &entry.Rank, &entry.Score); err != nil {
			return nil, err
		}
		ranks = append(ranks, entry)
	}
	return ranks, rows.Err()
}

// LatestDate retrieves the most recent ranking date for a model.
// Returns ErrNotFound when the model has no rankings.
func (r *RankRepository) LatestDate(ctx context.Context, modelID uuid.UUID) (time.Time, error) {
	var latest *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT MAX(date) FROM stock_ranks WHERE model_id = $1`, modelID,
	).Scan(&latest)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, err
	}
	if latest == nil {
		return time.Time{}, ErrNotFound
	}
	return *latest, nil
}

// DeleteByModel removes every ranking entry for a model
func (r *RankRepository) DeleteByModel(ctx context.Context, modelID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM stock_ranks WHERE model_id = $1`, modelID)
	return err
}
