package events

import (
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTimerPaused           EventType = "timer_paused"
	EventTimerResumed          EventType = "timer_resumed"
	EventSLAResponseBreached   EventType = "sla_response_breached"
	EventSLAResolutionBreached EventType = "sla_resolution_breached"
)

// BreachKind distinguishes the two SLA deadlines.
type BreachKind string

const (
	BreachKindResponse   BreachKind = "response"
	BreachKindResolution BreachKind = "resolution"
)

// Event represents a domain event emitted by the engine.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	OldStatusID string      `json:"old_status_id"`
	NewStatusID string      `json:"new_status_id"`
	Role        domain.Role `json:"role"`
}

// TimerPausedPayload payload.
type TimerPausedPayload struct {
	Reason string `json:"reason,omitempty"`
}

// TimerResumedPayload payload.
type TimerResumedPayload struct {
	PausedMinutes int `json:"paused_minutes"`
}

// SLABreachPayload is the breach-transition signal fed to the notification
// sink. It is published exactly once per breach, when the flag first flips.
type SLABreachPayload struct {
	Kind BreachKind `json:"kind"`
	Due  time.Time  `json:"due"`
}
