package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// TicketRepository is the thin accessor over the externally owned ticket
// record: the engine reads the SLA-relevant columns and writes status only.
type TicketRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	UpdateStatus(ctx context.Context, id, statusID string, at time.Time) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, status_id, product_id, priority, created_at, updated_at
        FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := querier(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.StatusID,
		&ticket.ProductID,
		&ticket.Priority,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id, statusID string, at time.Time) error {
	cmd, err := querier(ctx, r.pool).Exec(ctx,
		`UPDATE tickets SET status_id=$1, updated_at=$2 WHERE id=$3`, statusID, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}
