package domain

import "time"

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// Valid reports whether the priority is a known level.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// SLAPolicy defines the response/resolution targets for one product+priority
// pair. There is no fallback between priority levels.
type SLAPolicy struct {
	ID                    string
	ProductID             string
	Priority              TicketPriority
	ResponseTimeMinutes   int
	ResolutionTimeMinutes int
	BusinessHoursOnly     bool
	IsActive              bool
	CreatedAt             time.Time
}
