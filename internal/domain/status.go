package domain

import "time"

// TimerAction maps a status to the timer operation it implies. The mapping is
// deployment configuration, not engine logic.
type TimerAction string

const (
	TimerActionNone    TimerAction = "NONE"
	TimerActionResolve TimerAction = "RESOLVE"
	TimerActionPause   TimerAction = "PAUSE"
	TimerActionResume  TimerAction = "RESUME"
)

// Valid reports whether the action is a known value.
func (a TimerAction) Valid() bool {
	switch a {
	case TimerActionNone, TimerActionResolve, TimerActionPause, TimerActionResume:
		return true
	}
	return false
}

// Status is one configurable lifecycle state for tickets.
type Status struct {
	ID          string
	Name        string
	IsDefault   bool
	IsActive    bool
	SortOrder   int
	TimerAction TimerAction
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LessThan orders statuses for display. SortOrder values are not assumed to be
// contiguous; ties break on name to keep the ordering total.
func (s Status) LessThan(other Status) bool {
	if s.SortOrder != other.SortOrder {
		return s.SortOrder < other.SortOrder
	}
	return s.Name < other.Name
}
