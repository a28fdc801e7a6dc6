package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// SLARepository stores SLA policy rows.
type SLARepository interface {
	Create(ctx context.Context, policy *domain.SLAPolicy) error
	Deactivate(ctx context.Context, id string) error
	ListActive(ctx context.Context, productID string, priority domain.TicketPriority) ([]domain.SLAPolicy, error)
	ListAll(ctx context.Context) ([]domain.SLAPolicy, error)
}

type slaRepository struct {
	pool *pgxpool.Pool
}

// NewSLARepository instantiates repository.
func NewSLARepository(pool *pgxpool.Pool) SLARepository {
	return &slaRepository{pool: pool}
}

func (r *slaRepository) Create(ctx context.Context, policy *domain.SLAPolicy) error {
	const query = `
        INSERT INTO sla_policies (product_id, priority, response_time_minutes, resolution_time_minutes, business_hours_only, is_active)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		policy.ProductID,
		policy.Priority,
		policy.ResponseTimeMinutes,
		policy.ResolutionTimeMinutes,
		policy.BusinessHoursOnly,
		policy.IsActive,
	).Scan(&policy.ID, &policy.CreatedAt)
}

func (r *slaRepository) Deactivate(ctx context.Context, id string) error {
	cmd, err := querier(ctx, r.pool).Exec(ctx, `UPDATE sla_policies SET is_active=FALSE WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListActive orders newest first so resolver "most recent wins" falls out of
// the first row even before the resolver sorts.
func (r *slaRepository) ListActive(ctx context.Context, productID string, priority domain.TicketPriority) ([]domain.SLAPolicy, error) {
	const query = `
        SELECT id, product_id, priority, response_time_minutes, resolution_time_minutes, business_hours_only, is_active, created_at
        FROM sla_policies
        WHERE is_active=TRUE AND product_id=$1 AND priority=$2
        ORDER BY created_at DESC`
	rows, err := querier(ctx, r.pool).Query(ctx, query, productID, priority)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPolicies(rows)
}

func (r *slaRepository) ListAll(ctx context.Context) ([]domain.SLAPolicy, error) {
	const query = `
        SELECT id, product_id, priority, response_time_minutes, resolution_time_minutes, business_hours_only, is_active, created_at
        FROM sla_policies ORDER BY product_id, priority, created_at DESC`
	rows, err := querier(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPolicies(rows)
}

func scanPolicies(rows pgx.Rows) ([]domain.SLAPolicy, error) {
	var result []domain.SLAPolicy
	for rows.Next() {
		var policy domain.SLAPolicy
		if err := rows.Scan(
			&policy.ID,
			&policy.ProductID,
			&policy.Priority,
			&policy.ResponseTimeMinutes,
			&policy.ResolutionTimeMinutes,
			&policy.BusinessHoursOnly,
			&policy.IsActive,
			&policy.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, policy)
	}
	return result, rows.Err()
}
