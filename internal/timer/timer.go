package timer

import (
	"time"

	"github.com/spec-kit/sla-engine/internal/calendar"
	"github.com/spec-kit/sla-engine/internal/domain"
)

// Timer applies the SLA state machine to one ticket's persisted metrics. All
// mutations happen in memory; persistence and locking belong to the caller.
//
// Breach flags are monotonic: once set they are never cleared, including when
// work continues on a reopened ticket.
type Timer struct {
	metrics *domain.TimerMetrics
	cal     *calendar.Calendar
}

// New wraps existing metrics with the calendar used for billable arithmetic.
func New(metrics *domain.TimerMetrics, cal *calendar.Calendar) *Timer {
	return &Timer{metrics: metrics, cal: cal}
}

// Metrics exposes the underlying record.
func (t *Timer) Metrics() *domain.TimerMetrics {
	return t.metrics
}

// Start builds the metrics row for a freshly created ticket. With a policy it
// computes both due dates through the calendar; without one (no SLA applies)
// due dates stay nil and breach evaluation never triggers, though pauses are
// still recorded as the audit trail.
func Start(ticket *domain.Ticket, policy *domain.SLAPolicy, cal *calendar.Calendar, now time.Time) *domain.TimerMetrics {
	metrics := &domain.TimerMetrics{
		TicketID:  ticket.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if policy == nil {
		return metrics
	}
	metrics.BusinessHoursOnly = policy.BusinessHoursOnly
	responseDue := cal.AddMinutes(ticket.CreatedAt, policy.ResponseTimeMinutes, policy.BusinessHoursOnly)
	resolutionDue := cal.AddMinutes(ticket.CreatedAt, policy.ResolutionTimeMinutes, policy.BusinessHoursOnly)
	metrics.ResponseDue = &responseDue
	metrics.ResolutionDue = &resolutionDue
	return metrics
}

// MarkFirstResponse records the first operator reply. Later calls are no-ops.
func (t *Timer) MarkFirstResponse(at time.Time) error {
	m := t.metrics
	if m.Resolved() {
		return domain.ErrTimerClosed
	}
	if m.FirstResponseAt != nil {
		return nil
	}
	stamp := at
	m.FirstResponseAt = &stamp
	if m.ResponseDue != nil && at.After(*m.ResponseDue) {
		m.ResponseBreached = true
	}
	m.UpdatedAt = at
	return nil
}

// Pause opens a new pause interval, suspending SLA accrual.
func (t *Timer) Pause(at time.Time, reason string) error {
	m := t.metrics
	if m.Resolved() {
		return domain.ErrTimerClosed
	}
	if m.CurrentlyPaused {
		return domain.ErrAlreadyPaused
	}
	m.PauseHistory = append(m.PauseHistory, domain.PauseInterval{PausedAt: at, Reason: reason})
	m.CurrentlyPaused = true
	m.UpdatedAt = at
	return nil
}

// Resume closes the open pause interval, adds its billable duration to
// TotalPausedMinutes, and pushes both due dates forward by the same amount so
// the pause consumes no SLA budget.
func (t *Timer) Resume(at time.Time) error {
	m := t.metrics
	if m.Resolved() {
		return domain.ErrTimerClosed
	}
	open := m.OpenPause()
	if !m.CurrentlyPaused || open == nil {
		return domain.ErrNotPaused
	}

	stamp := at
	open.ResumedAt = &stamp
	paused := t.cal.ElapsedMinutes(open.PausedAt, at, m.BusinessHoursOnly)
	m.TotalPausedMinutes += paused
	extension := time.Duration(paused) * time.Minute
	if m.ResponseDue != nil {
		due := m.ResponseDue.Add(extension)
		m.ResponseDue = &due
	}
	if m.ResolutionDue != nil {
		due := m.ResolutionDue.Add(extension)
		m.ResolutionDue = &due
	}
	m.CurrentlyPaused = false
	m.UpdatedAt = at
	return nil
}

// MarkResolved closes the timer. A paused timer is resumed implicitly first so
// the final pause interval is accounted for. Resolved is terminal; later
// mutations fail with ErrTimerClosed.
func (t *Timer) MarkResolved(at time.Time) error {
	m := t.metrics
	if m.Resolved() {
		return nil
	}
	if m.CurrentlyPaused {
		if err := t.Resume(at); err != nil {
			return err
		}
	}
	stamp := at
	m.ResolvedAt = &stamp
	if m.ResolutionDue != nil && at.After(*m.ResolutionDue) {
		m.ResolutionBreached = true
	}
	m.UpdatedAt = at
	return nil
}

// EvaluateBreach raises breach flags for deadlines that passed without their
// milestone. Idempotent; safe to call from the sweep and before any snapshot
// read. A paused timer is skipped entirely: its due dates are extended at
// resume, so judging them mid-pause would raise flags the resume would have
// prevented. A resolved timer is the immutable historical record and is left
// untouched.
func (t *Timer) EvaluateBreach(now time.Time) {
	m := t.metrics
	if m.CurrentlyPaused || m.Resolved() {
		return
	}
	if m.ResponseDue != nil && m.FirstResponseAt == nil && now.After(*m.ResponseDue) {
		m.ResponseBreached = true
	}
	if m.ResolutionDue != nil && now.After(*m.ResolutionDue) {
		m.ResolutionBreached = true
	}
}
