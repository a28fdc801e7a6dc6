package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// StatusRepository encapsulates status lifecycle configuration.
type StatusRepository interface {
	Create(ctx context.Context, status *domain.Status) error
	Update(ctx context.Context, status *domain.Status) error
	GetByID(ctx context.Context, id string) (*domain.Status, error)
	ListActive(ctx context.Context) ([]domain.Status, error)
}

type statusRepository struct {
	pool *pgxpool.Pool
}

// NewStatusRepository instantiates repository.
func NewStatusRepository(pool *pgxpool.Pool) StatusRepository {
	return &statusRepository{pool: pool}
}

func (r *statusRepository) Create(ctx context.Context, status *domain.Status) error {
	db := querier(ctx, r.pool)
	if status.IsDefault {
		// Exactly one active status may be the default at any time.
		if _, err := db.Exec(ctx, `UPDATE statuses SET is_default=FALSE WHERE is_default=TRUE`); err != nil {
			return err
		}
	}
	const query = `
        INSERT INTO statuses (name, is_default, is_active, sort_order, timer_action)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return db.QueryRow(ctx, query,
		status.Name,
		status.IsDefault,
		status.IsActive,
		status.SortOrder,
		status.TimerAction,
	).Scan(&status.ID, &status.CreatedAt, &status.UpdatedAt)
}

func (r *statusRepository) Update(ctx context.Context, status *domain.Status) error {
	db := querier(ctx, r.pool)
	if status.IsDefault {
		if _, err := db.Exec(ctx, `UPDATE statuses SET is_default=FALSE WHERE is_default=TRUE AND id<>$1`, status.ID); err != nil {
			return err
		}
	}
	const query = `
        UPDATE statuses SET name=$1, is_default=$2, is_active=$3, sort_order=$4, timer_action=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := db.Exec(ctx, query,
		status.Name,
		status.IsDefault,
		status.IsActive,
		status.SortOrder,
		status.TimerAction,
		status.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrStatusNotFound
	}
	return nil
}

func (r *statusRepository) GetByID(ctx context.Context, id string) (*domain.Status, error) {
	const query = `
        SELECT id, name, is_default, is_active, sort_order, timer_action, created_at, updated_at
        FROM statuses WHERE id=$1`
	var status domain.Status
	if err := querier(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&status.ID,
		&status.Name,
		&status.IsDefault,
		&status.IsActive,
		&status.SortOrder,
		&status.TimerAction,
		&status.CreatedAt,
		&status.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStatusNotFound
		}
		return nil, err
	}
	return &status, nil
}

func (r *statusRepository) ListActive(ctx context.Context) ([]domain.Status, error) {
	const query = `
        SELECT id, name, is_default, is_active, sort_order, timer_action, created_at, updated_at
        FROM statuses WHERE is_active=TRUE ORDER BY sort_order, name`
	rows, err := querier(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Status
	for rows.Next() {
		var status domain.Status
		if err := rows.Scan(
			&status.ID,
			&status.Name,
			&status.IsDefault,
			&status.IsActive,
			&status.SortOrder,
			&status.TimerAction,
			&status.CreatedAt,
			&status.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, status)
	}
	return result, rows.Err()
}
