package domain

import "errors"

var (
	// ErrInvalidTransition means no active edge exists between the statuses.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrForbidden means the edge exists but the role is not permitted on it.
	ErrForbidden = errors.New("role not permitted for transition")

	ErrAlreadyPaused = errors.New("timer already paused")
	ErrNotPaused     = errors.New("timer not paused")
	ErrTimerClosed   = errors.New("timer closed")

	// ErrPolicyNotFound is the "no SLA applies" outcome, not a failure.
	ErrPolicyNotFound = errors.New("no SLA policy for product and priority")

	// ErrBusy signals lock contention; callers may retry with backoff.
	ErrBusy = errors.New("ticket busy")

	ErrInvalidRole    = errors.New("invalid role")
	ErrTicketNotFound = errors.New("ticket not found")
	ErrTimerNotFound  = errors.New("timer not found")
	ErrStatusNotFound = errors.New("status not found")
)
