package dto

import "time"

// StatusChangeRequest payload for ticket status changes.
type StatusChangeRequest struct {
	ToStatusID string `json:"to_status_id"`
}

// PauseRequest payload for an explicit timer pause.
type PauseRequest struct {
	Reason string `json:"reason"`
}

// TicketEventRequest payload for internal ticket lifecycle events.
type TicketEventRequest struct {
	OccurredAt *time.Time `json:"occurred_at"`
}

// SLASnapshotResponse is the SLA state view returned to callers.
type SLASnapshotResponse struct {
	TicketID           string     `json:"ticket_id"`
	ResponseDue        *time.Time `json:"response_due"`
	ResolutionDue      *time.Time `json:"resolution_due"`
	ResponseBreached   bool       `json:"response_breached"`
	ResolutionBreached bool       `json:"resolution_breached"`
	CurrentlyPaused    bool       `json:"currently_paused"`
	TotalPausedMinutes int        `json:"total_paused_minutes"`
}

// AllowedTargetsResponse lists reachable statuses for the caller's role.
type AllowedTargetsResponse struct {
	TicketID string   `json:"ticket_id"`
	Targets  []string `json:"targets"`
}
