package domain

import "time"

// PauseInterval is one recorded span during which SLA accrual was suspended.
// Only the last interval in a timer's history may be open (ResumedAt nil).
type PauseInterval struct {
	PausedAt  time.Time  `json:"paused_at"`
	ResumedAt *time.Time `json:"resumed_at,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

// TimerMetrics is the persisted SLA state for one ticket. It is the audit
// trail of SLA compliance and is never deleted while the ticket exists.
type TimerMetrics struct {
	ID                 string
	TicketID           string
	FirstResponseAt    *time.Time
	ResolvedAt         *time.Time
	ResponseDue        *time.Time
	ResolutionDue      *time.Time
	ResponseBreached   bool
	ResolutionBreached bool
	PauseHistory       []PauseInterval
	TotalPausedMinutes int
	CurrentlyPaused    bool
	BusinessHoursOnly  bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Resolved reports whether the timer reached its terminal state.
func (m *TimerMetrics) Resolved() bool {
	return m.ResolvedAt != nil
}

// HasSLA reports whether an SLA policy applied when the timer was created.
func (m *TimerMetrics) HasSLA() bool {
	return m.ResponseDue != nil || m.ResolutionDue != nil
}

// OpenPause returns the trailing open pause interval, or nil.
func (m *TimerMetrics) OpenPause() *PauseInterval {
	if len(m.PauseHistory) == 0 {
		return nil
	}
	last := &m.PauseHistory[len(m.PauseHistory)-1]
	if last.ResumedAt != nil {
		return nil
	}
	return last
}
