package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-engine/internal/calendar"
	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/events"
	"github.com/spec-kit/sla-engine/internal/locks"
	"github.com/spec-kit/sla-engine/internal/observability"
	"github.com/spec-kit/sla-engine/internal/policy"
	"github.com/spec-kit/sla-engine/internal/repository"
	"github.com/spec-kit/sla-engine/internal/timer"
	"github.com/spec-kit/sla-engine/internal/transition"
)

// TxRunner runs fn so that every repository write inside it commits or rolls
// back atomically.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Dependencies bundles collaborators for the engine.
type Dependencies struct {
	Tickets     repository.TicketRepository
	Timers      repository.TimerRepository
	Statuses    repository.StatusRepository
	Transitions repository.TransitionRepository
	Policies    repository.SLARepository
	Holidays    repository.HolidayRepository
	Tx          TxRunner
	Locks       locks.Manager
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	Window      calendar.Window
}

// Engine drives the transition graph, policy resolver, and ticket timer
// together. Every mutating operation holds the ticket's exclusive lock around
// one transaction, so timer state never interleaves per ticket while
// different tickets proceed in parallel.
type Engine struct {
	tickets     repository.TicketRepository
	timers      repository.TimerRepository
	statuses    repository.StatusRepository
	transitions repository.TransitionRepository
	holidays    repository.HolidayRepository
	resolver    *policy.Resolver
	tx          TxRunner
	locks       locks.Manager
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	metrics     *observability.Metrics
	window      calendar.Window
	cal         atomic.Pointer[calendar.Calendar]
}

// New constructs the engine with an empty holiday snapshot; call
// RefreshCalendar at startup to load holidays.
func New(deps Dependencies) *Engine {
	e := &Engine{
		tickets:     deps.Tickets,
		timers:      deps.Timers,
		statuses:    deps.Statuses,
		transitions: deps.Transitions,
		holidays:    deps.Holidays,
		resolver:    policy.NewResolver(deps.Policies),
		tx:          deps.Tx,
		locks:       deps.Locks,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		metrics:     deps.Metrics,
		window:      deps.Window,
	}
	e.cal.Store(calendar.New(deps.Window, nil))
	return e
}

// RefreshCalendar reloads the holiday snapshot. Invoked at startup and at
// every sweep tick, so calendar changes take effect within one sweep interval.
func (e *Engine) RefreshCalendar(ctx context.Context) error {
	holidays, err := e.holidays.ListAll(ctx)
	if err != nil {
		return err
	}
	e.cal.Store(calendar.New(e.window, holidays))
	return nil
}

func (e *Engine) calendar() *calendar.Calendar {
	return e.cal.Load()
}

// SLASnapshot is the caller-facing view of a ticket's SLA state.
type SLASnapshot struct {
	TicketID           string
	ResponseDue        *time.Time
	ResolutionDue      *time.Time
	ResponseBreached   bool
	ResolutionBreached bool
	CurrentlyPaused    bool
	TotalPausedMinutes int
}

// HandleTicketCreated creates the timer row for a new ticket, resolving the
// SLA policy and computing due dates. Idempotent: a second delivery of the
// creation event leaves the existing timer untouched.
func (e *Engine) HandleTicketCreated(ctx context.Context, ticketID string, now time.Time) error {
	return e.withTicketLock(ctx, ticketID, func(txCtx context.Context, publish *[]events.Event) error {
		if _, err := e.timers.GetByTicket(txCtx, ticketID); err == nil {
			return nil
		} else if !errors.Is(err, domain.ErrTimerNotFound) {
			return err
		}

		ticket, err := e.tickets.GetByID(txCtx, ticketID)
		if err != nil {
			return err
		}

		slaPolicy, err := e.resolver.Resolve(txCtx, ticket.ProductID, ticket.Priority)
		if err != nil && !errors.Is(err, domain.ErrPolicyNotFound) {
			return err
		}
		if slaPolicy == nil {
			e.logger.Info("no SLA policy for ticket",
				zap.String("ticket_id", ticketID),
				zap.String("product_id", ticket.ProductID),
				zap.String("priority", string(ticket.Priority)))
		}

		metrics := timer.Start(ticket, slaPolicy, e.calendar(), now)
		return e.timers.Create(txCtx, metrics)
	})
}

// RequestStatusChange validates and applies a status change for the given
// role. The status write and any implied timer mutation commit atomically;
// validation failures leave no side effects.
func (e *Engine) RequestStatusChange(ctx context.Context, ticketID, toStatusID string, role domain.Role, now time.Time) error {
	if !role.Valid() {
		return domain.ErrInvalidRole
	}
	return e.withTicketLock(ctx, ticketID, func(txCtx context.Context, publish *[]events.Event) error {
		ticket, err := e.tickets.GetByID(txCtx, ticketID)
		if err != nil {
			return err
		}

		edges, err := e.transitions.ListActive(txCtx)
		if err != nil {
			return err
		}
		if err := transition.NewGraph(edges).CanTransition(ticket.StatusID, toStatusID, role); err != nil {
			return err
		}

		toStatus, err := e.statuses.GetByID(txCtx, toStatusID)
		if err != nil {
			return err
		}

		if err := e.tickets.UpdateStatus(txCtx, ticketID, toStatusID, now); err != nil {
			return err
		}
		if err := e.applyTimerAction(txCtx, ticketID, toStatus, now, publish); err != nil {
			return err
		}

		*publish = append(*publish, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticketID,
			Payload: events.StatusChangedPayload{
				OldStatusID: ticket.StatusID,
				NewStatusID: toStatusID,
				Role:        role,
			},
		})
		return nil
	})
}

// applyTimerAction runs the timer operation configured on the target status.
// The status-to-action mapping is deployment data, never engine logic.
func (e *Engine) applyTimerAction(ctx context.Context, ticketID string, toStatus *domain.Status, now time.Time, publish *[]events.Event) error {
	if toStatus.TimerAction == domain.TimerActionNone || toStatus.TimerAction == "" {
		return nil
	}
	return e.mutateTimer(ctx, ticketID, publish, func(t *timer.Timer) error {
		switch toStatus.TimerAction {
		case domain.TimerActionResolve:
			return t.MarkResolved(now)
		case domain.TimerActionPause:
			if err := t.Pause(now, "status:"+toStatus.Name); err != nil {
				return err
			}
			*publish = append(*publish, events.Event{
				Type:     events.EventTimerPaused,
				TicketID: ticketID,
				Payload:  events.TimerPausedPayload{Reason: "status:" + toStatus.Name},
			})
			return nil
		case domain.TimerActionResume:
			before := t.Metrics().TotalPausedMinutes
			if err := t.Resume(now); err != nil {
				return err
			}
			*publish = append(*publish, events.Event{
				Type:     events.EventTimerResumed,
				TicketID: ticketID,
				Payload:  events.TimerResumedPayload{PausedMinutes: t.Metrics().TotalPausedMinutes - before},
			})
			return nil
		}
		return nil
	})
}

// RecordFirstResponse marks the first operator reply on the ticket.
func (e *Engine) RecordFirstResponse(ctx context.Context, ticketID string, now time.Time) error {
	return e.withTicketLock(ctx, ticketID, func(txCtx context.Context, publish *[]events.Event) error {
		return e.mutateTimer(txCtx, ticketID, publish, func(t *timer.Timer) error {
			return t.MarkFirstResponse(now)
		})
	})
}

// RecordResolution closes the ticket's timer.
func (e *Engine) RecordResolution(ctx context.Context, ticketID string, now time.Time) error {
	return e.withTicketLock(ctx, ticketID, func(txCtx context.Context, publish *[]events.Event) error {
		return e.mutateTimer(txCtx, ticketID, publish, func(t *timer.Timer) error {
			return t.MarkResolved(now)
		})
	})
}

// PauseTimer suspends SLA accrual for the ticket.
func (e *Engine) PauseTimer(ctx context.Context, ticketID string, now time.Time, reason string) error {
	return e.withTicketLock(ctx, ticketID, func(txCtx context.Context, publish *[]events.Event) error {
		return e.mutateTimer(txCtx, ticketID, publish, func(t *timer.Timer) error {
			if err := t.Pause(now, reason); err != nil {
				return err
			}
			*publish = append(*publish, events.Event{
				Type:     events.EventTimerPaused,
				TicketID: ticketID,
				Payload:  events.TimerPausedPayload{Reason: reason},
			})
			return nil
		})
	})
}

// ResumeTimer reinstates SLA accrual, extending due dates by the paused span.
func (e *Engine) ResumeTimer(ctx context.Context, ticketID string, now time.Time) error {
	return e.withTicketLock(ctx, ticketID, func(txCtx context.Context, publish *[]events.Event) error {
		return e.mutateTimer(txCtx, ticketID, publish, func(t *timer.Timer) error {
			before := t.Metrics().TotalPausedMinutes
			if err := t.Resume(now); err != nil {
				return err
			}
			*publish = append(*publish, events.Event{
				Type:     events.EventTimerResumed,
				TicketID: ticketID,
				Payload:  events.TimerResumedPayload{PausedMinutes: t.Metrics().TotalPausedMinutes - before},
			})
			return nil
		})
	})
}

// GetSLASnapshot evaluates breaches and returns the current SLA state, so a
// displayed snapshot is never staler than the instant it was requested.
func (e *Engine) GetSLASnapshot(ctx context.Context, ticketID string, now time.Time) (*SLASnapshot, error) {
	var snapshot *SLASnapshot
	err := e.withTicketLock(ctx, ticketID, func(txCtx context.Context, publish *[]events.Event) error {
		err := e.mutateTimer(txCtx, ticketID, publish, func(t *timer.Timer) error {
			t.EvaluateBreach(now)
			return nil
		})
		if err != nil {
			return err
		}
		metrics, err := e.timers.GetByTicket(txCtx, ticketID)
		if err != nil {
			return err
		}
		snapshot = &SLASnapshot{
			TicketID:           metrics.TicketID,
			ResponseDue:        metrics.ResponseDue,
			ResolutionDue:      metrics.ResolutionDue,
			ResponseBreached:   metrics.ResponseBreached,
			ResolutionBreached: metrics.ResolutionBreached,
			CurrentlyPaused:    metrics.CurrentlyPaused,
			TotalPausedMinutes: metrics.TotalPausedMinutes,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// AllowedStatusTargets lists the statuses the role may move the ticket to.
func (e *Engine) AllowedStatusTargets(ctx context.Context, ticketID string, role domain.Role) ([]string, error) {
	ticket, err := e.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	edges, err := e.transitions.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return transition.NewGraph(edges).AllowedTargets(ticket.StatusID, role), nil
}

// withTicketLock serializes the mutation per ticket and publishes collected
// events only after the transaction committed, so a rolled-back change never
// signals anything.
func (e *Engine) withTicketLock(ctx context.Context, ticketID string, fn func(txCtx context.Context, publish *[]events.Event) error) error {
	release, err := e.locks.Acquire(ctx, ticketID)
	if err != nil {
		if errors.Is(err, domain.ErrBusy) {
			e.metrics.RecordLockTimeout()
		}
		return err
	}
	defer release()

	var pending []events.Event
	if err := e.tx.WithTx(ctx, func(txCtx context.Context) error {
		return fn(txCtx, &pending)
	}); err != nil {
		return err
	}

	e.publish(ctx, pending)
	return nil
}

// mutateTimer loads the timer row under a row lock, applies fn, persists when
// anything changed, and appends edge-triggered breach signals.
func (e *Engine) mutateTimer(ctx context.Context, ticketID string, publish *[]events.Event, fn func(t *timer.Timer) error) error {
	metrics, err := e.timers.GetByTicketForUpdate(ctx, ticketID)
	if err != nil {
		return err
	}

	responseBefore := metrics.ResponseBreached
	resolutionBefore := metrics.ResolutionBreached

	t := timer.New(metrics, e.calendar())
	if err := fn(t); err != nil {
		return err
	}
	if err := e.timers.Update(ctx, metrics); err != nil {
		return err
	}

	if !responseBefore && metrics.ResponseBreached {
		e.metrics.RecordBreach(string(events.BreachKindResponse))
		*publish = append(*publish, events.Event{
			Type:     events.EventSLAResponseBreached,
			TicketID: ticketID,
			Payload:  events.SLABreachPayload{Kind: events.BreachKindResponse, Due: derefTime(metrics.ResponseDue)},
		})
	}
	if !resolutionBefore && metrics.ResolutionBreached {
		e.metrics.RecordBreach(string(events.BreachKindResolution))
		*publish = append(*publish, events.Event{
			Type:     events.EventSLAResolutionBreached,
			TicketID: ticketID,
			Payload:  events.SLABreachPayload{Kind: events.BreachKindResolution, Due: derefTime(metrics.ResolutionDue)},
		})
	}
	return nil
}

func (e *Engine) publish(ctx context.Context, pending []events.Event) {
	if e.dispatcher == nil {
		return
	}
	for _, event := range pending {
		if event.ID == "" {
			event.ID = uuid.NewString()
		}
		if event.Timestamp.IsZero() {
			event.Timestamp = time.Now()
		}
		_ = e.dispatcher.Publish(ctx, event)
	}
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
