package dto

import (
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// CreateStatusRequest payload.
type CreateStatusRequest struct {
	Name        string             `json:"name"`
	IsDefault   bool               `json:"is_default"`
	SortOrder   int                `json:"sort_order"`
	TimerAction domain.TimerAction `json:"timer_action"`
}

// StatusResponse representation.
type StatusResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	IsDefault   bool               `json:"is_default"`
	IsActive    bool               `json:"is_active"`
	SortOrder   int                `json:"sort_order"`
	TimerAction domain.TimerAction `json:"timer_action"`
	CreatedAt   time.Time          `json:"created_at"`
}

// CreateTransitionRequest payload.
type CreateTransitionRequest struct {
	FromStatusID string   `json:"from_status_id"`
	ToStatusID   string   `json:"to_status_id"`
	AllowedRoles []string `json:"allowed_roles"`
}

// TransitionResponse representation.
type TransitionResponse struct {
	ID           string        `json:"id"`
	FromStatusID string        `json:"from_status_id"`
	ToStatusID   string        `json:"to_status_id"`
	AllowedRoles []domain.Role `json:"allowed_roles"`
	IsActive     bool          `json:"is_active"`
	CreatedAt    time.Time     `json:"created_at"`
}

// CreatePolicyRequest payload.
type CreatePolicyRequest struct {
	ProductID             string                `json:"product_id"`
	Priority              domain.TicketPriority `json:"priority"`
	ResponseTimeMinutes   int                   `json:"response_time_minutes"`
	ResolutionTimeMinutes int                   `json:"resolution_time_minutes"`
	BusinessHoursOnly     bool                  `json:"business_hours_only"`
}

// PolicyResponse representation.
type PolicyResponse struct {
	ID                    string                `json:"id"`
	ProductID             string                `json:"product_id"`
	Priority              domain.TicketPriority `json:"priority"`
	ResponseTimeMinutes   int                   `json:"response_time_minutes"`
	ResolutionTimeMinutes int                   `json:"resolution_time_minutes"`
	BusinessHoursOnly     bool                  `json:"business_hours_only"`
	IsActive              bool                  `json:"is_active"`
	CreatedAt             time.Time             `json:"created_at"`
}

// CreateHolidayRequest payload. Day uses 2006-01-02 formatting; recurring
// holidays match the month/day every year.
type CreateHolidayRequest struct {
	Day         string `json:"day"`
	Name        string `json:"name"`
	IsRecurring bool   `json:"is_recurring"`
}

// HolidayResponse representation.
type HolidayResponse struct {
	ID          string    `json:"id"`
	Day         string    `json:"day"`
	Name        string    `json:"name"`
	IsRecurring bool      `json:"is_recurring"`
	CreatedAt   time.Time `json:"created_at"`
}
