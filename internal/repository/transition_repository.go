package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// TransitionRepository stores the role-gated status graph edges.
type TransitionRepository interface {
	Create(ctx context.Context, tr *domain.StatusTransition) error
	Deactivate(ctx context.Context, id string) error
	ListActive(ctx context.Context) ([]domain.StatusTransition, error)
}

type transitionRepository struct {
	pool *pgxpool.Pool
}

// NewTransitionRepository instantiates repository.
func NewTransitionRepository(pool *pgxpool.Pool) TransitionRepository {
	return &transitionRepository{pool: pool}
}

func (r *transitionRepository) Create(ctx context.Context, tr *domain.StatusTransition) error {
	const query = `
        INSERT INTO status_transitions (from_status_id, to_status_id, allowed_roles, is_active)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	roles := make([]string, len(tr.AllowedRoles))
	for i, role := range tr.AllowedRoles {
		roles[i] = string(role)
	}
	return querier(ctx, r.pool).QueryRow(ctx, query,
		tr.FromStatusID,
		tr.ToStatusID,
		roles,
		tr.IsActive,
	).Scan(&tr.ID, &tr.CreatedAt)
}

func (r *transitionRepository) Deactivate(ctx context.Context, id string) error {
	cmd, err := querier(ctx, r.pool).Exec(ctx, `UPDATE status_transitions SET is_active=FALSE WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *transitionRepository) ListActive(ctx context.Context) ([]domain.StatusTransition, error) {
	const query = `
        SELECT id, from_status_id, to_status_id, allowed_roles, is_active, created_at
        FROM status_transitions WHERE is_active=TRUE ORDER BY created_at`
	rows, err := querier(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusTransition
	for rows.Next() {
		var tr domain.StatusTransition
		var roles []string
		if err := rows.Scan(
			&tr.ID,
			&tr.FromStatusID,
			&tr.ToStatusID,
			&roles,
			&tr.IsActive,
			&tr.CreatedAt,
		); err != nil {
			return nil, err
		}
		tr.AllowedRoles = make([]domain.Role, len(roles))
		for i, role := range roles {
			tr.AllowedRoles[i] = domain.Role(role)
		}
		result = append(result, tr)
	}
	return result, rows.Err()
}
