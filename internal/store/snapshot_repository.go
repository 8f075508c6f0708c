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

// SnapshotRepository implements contracts.SnapshotRepository
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Save upserts a snapshot and replaces its holdings in one transaction
func (r *SnapshotRepository) Save(ctx context.Context, snapshot *contracts.PortfolioSnapshot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if snapshot.ID == uuid.Nil {
		snapshot.ID = uuid.New()
	}

	query := `
		INSERT INTO portfolio_snapshots (id, model_id, date, total_value, active_sub_model_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (model_id, date) DO UPDATE SET
			total_value = EXCLUDED.total_value,
			active_sub_model_id = EXCLUDED.active_sub_model_id
		RETURNING id
	`
	err = tx.QueryRow(ctx, query,
		snapshot.ID, snapshot.ModelID, snapshot.Date, snapshot.TotalValue, snapshot.ActiveSubModelID,
	).Scan(&snapshot.ID)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM portfolio_holdings WHERE snapshot_id = $1`, snapshot.ID); err != nil {
		return fmt.Errorf("clear holdings: %w", err)
	}

	for _, h := range snapshot.Holdings {
		_, err := tx.Exec(ctx, `
			INSERT INTO portfolio_holdings (snapshot_id, ticker, shares, purchase_price, current_price, weight, rank, buy_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, snapshot.ID, h.Ticker, h.Shares, h.PurchasePrice, h.CurrentPrice, h.Weight, h.Rank, h.BuyDate)
		if err != nil {
			return fmt.Errorf("insert holding %s: %w", h.Ticker, err)
		}
	}

	return tx.Commit(ctx)
}

// GetLatest retrieves a model's most recent snapshot with holdings
func (r *SnapshotRepository) GetLatest(ctx context.Context, modelID uuid.UUID) (*contracts.PortfolioSnapshot, error) {
	query := `
		SELECT id, model_id, date, total_value, active_sub_model_id
		FROM portfolio_snapshots
		WHERE model_id = $1
		ORDER BY date DESC
		LIMIT 1
	`
	return r.getOne(ctx, query, modelID)
}

// GetByDate retrieves a model's snapshot for a specific date
func (r *SnapshotRepository) GetByDate(ctx context.Context, modelID uuid.UUID, date time.Time) (*contracts.PortfolioSnapshot, error) {
	query := `
		SELECT id, model_id, date, total_value, active_sub_model_id
		FROM portfolio_snapshots
		WHERE model_id = $1 AND date = $2
	`
	return r.getOne(ctx, query, modelID, date)
}

// ListDates retrieves a model's snapshot dates, newest first
func (r *SnapshotRepository) ListDates(ctx context.Context, modelID uuid.UUID) ([]time.Time, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date FROM portfolio_snapshots
		WHERE model_id = $1
		ORDER BY date DESC
	`, modelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// DeleteByModel removes every snapshot (and cascaded holdings) for a model
func (r *SnapshotRepository) DeleteByModel(ctx context.Context, modelID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM portfolio_snapshots WHERE model_id = $1`, modelID)
	return err
}

func (r *SnapshotRepository) getOne(ctx context.Context, query string, args ...any) (*contracts.PortfolioSnapshot, error) {
	var s contracts.PortfolioSnapshot
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&s.ID, &s.ModelID, &s.Date, &s.TotalValue, &s.ActiveSubModelID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if s.Holdings, err = r.loadHoldings(ctx, s.ID); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SnapshotRepository) loadHoldings(ctx context.Context, snapshotID uuid.UUID) ([]contracts.PortfolioHolding, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ticker, shares, purchase_price, current_price, weight, rank, buy_date
		FROM portfolio_holdings
		WHERE snapshot_id = $1
		ORDER BY weight DESC, ticker ASC
	`, snapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holdings []contracts.PortfolioHolding
	for rows.Next() {
		var h contracts.PortfolioHolding
		if err := rows.Scan(&h.Ticker, &h.Shares, &h.PurchasePrice, &h.CurrentPrice, &h.Weight, &h.Rank, &h.BuyDate); err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}
