package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// TimerRepository persists per-ticket SLA timer state. GetByTicketForUpdate
// takes a row lock so a timer's read-modify-write is serialized inside the
// enclosing transaction.
type TimerRepository interface {
	Create(ctx context.Context, metrics *domain.TimerMetrics) error
	Update(ctx context.Context, metrics *domain.TimerMetrics) error
	GetByTicket(ctx context.Context, ticketID string) (*domain.TimerMetrics, error)
	GetByTicketForUpdate(ctx context.Context, ticketID string) (*domain.TimerMetrics, error)
	ListOpenTicketIDs(ctx context.Context) ([]string, error)
}

type timerRepository struct {
	pool *pgxpool.Pool
}

// NewTimerRepository instantiates repository.
func NewTimerRepository(pool *pgxpool.Pool) TimerRepository {
	return &timerRepository{pool: pool}
}

const timerColumns = `id, ticket_id, first_response_at, resolved_at, sla_response_due, sla_resolution_due,
               sla_response_breached, sla_resolution_breached, pause_history, total_paused_minutes,
               currently_paused, business_hours_only, created_at, updated_at`

func (r *timerRepository) Create(ctx context.Context, metrics *domain.TimerMetrics) error {
	history, err := marshalPauseHistory(metrics.PauseHistory)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO ticket_time_metrics (ticket_id, first_response_at, resolved_at, sla_response_due, sla_resolution_due,
            sla_response_breached, sla_resolution_breached, pause_history, total_paused_minutes,
            currently_paused, business_hours_only, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		metrics.TicketID,
		metrics.FirstResponseAt,
		metrics.ResolvedAt,
		metrics.ResponseDue,
		metrics.ResolutionDue,
		metrics.ResponseBreached,
		metrics.ResolutionBreached,
		history,
		metrics.TotalPausedMinutes,
		metrics.CurrentlyPaused,
		metrics.BusinessHoursOnly,
		metrics.CreatedAt,
		metrics.UpdatedAt,
	).Scan(&metrics.ID)
}

func (r *timerRepository) Update(ctx context.Context, metrics *domain.TimerMetrics) error {
	history, err := marshalPauseHistory(metrics.PauseHistory)
	if err != nil {
		return err
	}
	const query = `
        UPDATE ticket_time_metrics SET first_response_at=$1, resolved_at=$2, sla_response_due=$3, sla_resolution_due=$4,
            sla_response_breached=$5, sla_resolution_breached=$6, pause_history=$7, total_paused_minutes=$8,
            currently_paused=$9, updated_at=$10
        WHERE id=$11`
	cmd, err := querier(ctx, r.pool).Exec(ctx, query,
		metrics.FirstResponseAt,
		metrics.ResolvedAt,
		metrics.ResponseDue,
		metrics.ResolutionDue,
		metrics.ResponseBreached,
		metrics.ResolutionBreached,
		history,
		metrics.TotalPausedMinutes,
		metrics.CurrentlyPaused,
		metrics.UpdatedAt,
		metrics.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrTimerNotFound
	}
	return nil
}

func (r *timerRepository) GetByTicket(ctx context.Context, ticketID string) (*domain.TimerMetrics, error) {
	query := fmt.Sprintf(`SELECT %s FROM ticket_time_metrics WHERE ticket_id=$1`, timerColumns)
	return r.fetchSingle(ctx, query, ticketID)
}

func (r *timerRepository) GetByTicketForUpdate(ctx context.Context, ticketID string) (*domain.TimerMetrics, error) {
	query := fmt.Sprintf(`SELECT %s FROM ticket_time_metrics WHERE ticket_id=$1 FOR UPDATE`, timerColumns)
	return r.fetchSingle(ctx, query, ticketID)
}

func (r *timerRepository) fetchSingle(ctx context.Context, query, ticketID string) (*domain.TimerMetrics, error) {
	var metrics domain.TimerMetrics
	var history []byte
	if err := querier(ctx, r.pool).QueryRow(ctx, query, ticketID).Scan(
		&metrics.ID,
		&metrics.TicketID,
		&metrics.FirstResponseAt,
		&metrics.ResolvedAt,
		&metrics.ResponseDue,
		&metrics.ResolutionDue,
		&metrics.ResponseBreached,
		&metrics.ResolutionBreached,
		&history,
		&metrics.TotalPausedMinutes,
		&metrics.CurrentlyPaused,
		&metrics.BusinessHoursOnly,
		&metrics.CreatedAt,
		&metrics.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTimerNotFound
		}
		return nil, err
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &metrics.PauseHistory); err != nil {
			return nil, fmt.Errorf("decode pause history for ticket %s: %w", ticketID, err)
		}
	}
	return &metrics, nil
}

// ListOpenTicketIDs returns the tickets whose timers the sweep must evaluate.
func (r *timerRepository) ListOpenTicketIDs(ctx context.Context) ([]string, error) {
	const query = `
        SELECT ticket_id FROM ticket_time_metrics
        WHERE resolved_at IS NULL
          AND (sla_response_due IS NOT NULL OR sla_resolution_due IS NOT NULL)
        ORDER BY created_at`
	rows, err := querier(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func marshalPauseHistory(history []domain.PauseInterval) ([]byte, error) {
	if history == nil {
		history = []domain.PauseInterval{}
	}
	return json.Marshal(history)
}
