package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DonaldPG/pytaaa-web/internal/contracts"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// ModelRepository implements contracts.ModelRepository
type ModelRepository struct {
	pool *pgxpool.Pool
}

// NewModelRepository creates a new model repository
func NewModelRepository(pool *pgxpool.Pool) *ModelRepository {
	return &ModelRepository{pool: pool}
}

// CreateOrGet inserts the model or, when the name already exists,
// refreshes its description and flags. The model's ID is filled in
// either way.
func (r *ModelRepository) CreateOrGet(ctx context.Context, model *contracts.TradingModel) error {
	query := `
		INSERT INTO trading_models (id, name, description, index_type, is_meta)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description,
			index_type = EXCLUDED.index_type,
			is_meta = EXCLUDED.is_meta
		RETURNING id
	`

	if model.ID == uuid.Nil {
		model.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx, query,
		model.ID, model.Name, model.Description, model.IndexType, model.IsMeta,
	).Scan(&model.ID)
	if err != nil {
		return fmt.Errorf("upsert model %s: %w", model.Name, err)
	}
	return nil
}

// GetByID retrieves a model by its ID
func (r *ModelRepository) GetByID(ctx context.Context, id uuid.UUID) (*contracts.TradingModel, error) {
	query := `
		SELECT id, name, description, index_type, is_meta
		FROM trading_models
		WHERE id = $1
	`

	var m contracts.TradingModel
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Name, &m.Description, &m.IndexType, &m.IsMeta,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByName retrieves a model by its unique name
func (r *ModelRepository) GetByName(ctx context.Context, name string) (*contracts.TradingModel, error) {
	query := `
		SELECT id, name, description, index_type, is_meta
		FROM trading_models
		WHERE name = $1
	`

	var m contracts.TradingModel
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&m.ID, &m.Name, &m.Description, &m.IndexType, &m.IsMeta,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List retrieves every model with its most recent traded value,
// meta-models first.
func (r *ModelRepository) List(ctx context.Context) ([]contracts.ModelWithLatest, error) {
	query := `
		SELECT m.id, m.name, m.description, m.index_type, m.is_meta,
		       pm.traded_value, pm.date
		FROM trading_models m
		LEFT JOIN LATERAL (
			SELECT traded_value, date
			FROM performance_metrics
			WHERE model_id = m.id
			ORDER BY date DESC
			LIMIT 1
		) pm ON TRUE
		ORDER BY m.is_meta DESC, m.name ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var models []contracts.ModelWithLatest
	for rows.Next() {
		var m contracts.ModelWithLatest
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Description, &m.IndexType, &m.IsMeta,
			&m.LatestValue, &m.LatestDate,
		); err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, rows.Err()
}
