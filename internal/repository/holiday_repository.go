package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// HolidayRepository stores calendar exclusion dates.
type HolidayRepository interface {
	Create(ctx context.Context, holiday *domain.Holiday) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]domain.Holiday, error)
}

type holidayRepository struct {
	pool *pgxpool.Pool
}

// NewHolidayRepository instantiates repository.
func NewHolidayRepository(pool *pgxpool.Pool) HolidayRepository {
	return &holidayRepository{pool: pool}
}

func (r *holidayRepository) Create(ctx context.Context, holiday *domain.Holiday) error {
	const query = `
        INSERT INTO holidays (day, name, is_recurring)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		holiday.Day,
		holiday.Name,
		holiday.IsRecurring,
	).Scan(&holiday.ID, &holiday.CreatedAt)
}

func (r *holidayRepository) Delete(ctx context.Context, id string) error {
	cmd, err := querier(ctx, r.pool).Exec(ctx, `DELETE FROM holidays WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *holidayRepository) ListAll(ctx context.Context) ([]domain.Holiday, error) {
	const query = `SELECT id, day, name, is_recurring, created_at FROM holidays ORDER BY day`
	rows, err := querier(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Holiday
	for rows.Next() {
		var holiday domain.Holiday
		if err := rows.Scan(
			&holiday.ID,
			&holiday.Day,
			&holiday.Name,
			&holiday.IsRecurring,
			&holiday.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, holiday)
	}
	return result, rows.Err()
}
