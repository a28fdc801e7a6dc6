package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// sentinelMap pins each domain sentinel to its wire code and HTTP status.
var sentinelMap = []struct {
	err    error
	code   string
	msg    string
	status int
}{
	{domain.ErrInvalidTransition, "INVALID_TRANSITION", "transition is not defined between these statuses", http.StatusUnprocessableEntity},
	{domain.ErrForbidden, "FORBIDDEN", "role may not take this transition", http.StatusForbidden},
	{domain.ErrInvalidRole, "INVALID_ROLE", "unknown role", http.StatusBadRequest},
	{domain.ErrAlreadyPaused, "ALREADY_PAUSED", "timer is already paused", http.StatusConflict},
	{domain.ErrNotPaused, "NOT_PAUSED", "timer is not paused", http.StatusConflict},
	{domain.ErrTimerClosed, "TIMER_CLOSED", "timer is resolved and closed", http.StatusConflict},
	{domain.ErrBusy, "BUSY", "ticket is being modified, retry shortly", http.StatusServiceUnavailable},
	{domain.ErrTicketNotFound, "NOT_FOUND", "ticket not found", http.StatusNotFound},
	{domain.ErrTimerNotFound, "NOT_FOUND", "timer not found", http.StatusNotFound},
	{domain.ErrStatusNotFound, "NOT_FOUND", "status not found", http.StatusNotFound},
	{domain.ErrPolicyNotFound, "NOT_FOUND", "sla policy not found", http.StatusNotFound},
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	for _, s := range sentinelMap {
		if errors.Is(err, s.err) {
			return &DomainError{Code: s.code, Message: s.msg, HTTPStatus: s.status, Err: err}
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
