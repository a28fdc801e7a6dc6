package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-engine/internal/api/dto"
	"github.com/spec-kit/sla-engine/internal/auth"
	"github.com/spec-kit/sla-engine/internal/clock"
	"github.com/spec-kit/sla-engine/internal/engine"
	apperrors "github.com/spec-kit/sla-engine/pkg/util"
)

// SLAHandler exposes ticket-scoped engine operations.
type SLAHandler struct {
	engine *engine.Engine
	clock  clock.Clock
}

// NewSLAHandler constructs handler.
func NewSLAHandler(eng *engine.Engine, clk clock.Clock) *SLAHandler {
	return &SLAHandler{engine: eng, clock: clk}
}

// ChangeStatus POST /tickets/:id/status.
func (h *SLAHandler) ChangeStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.StatusChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ToStatusID == "" {
		return apperrors.NewValidationError("to_status_id required", nil)
	}

	err := h.engine.RequestStatusChange(c.UserContext(), c.Params("id"), req.ToStatusID, principal.Role, h.clock.Now())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"ticket_id": c.Params("id"), "status_id": req.ToStatusID}})
}

// GetSnapshot GET /tickets/:id/sla.
func (h *SLAHandler) GetSnapshot(c *fiber.Ctx) error {
	snapshot, err := h.engine.GetSLASnapshot(c.UserContext(), c.Params("id"), h.clock.Now())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SLASnapshotResponse{
		TicketID:           snapshot.TicketID,
		ResponseDue:        snapshot.ResponseDue,
		ResolutionDue:      snapshot.ResolutionDue,
		ResponseBreached:   snapshot.ResponseBreached,
		ResolutionBreached: snapshot.ResolutionBreached,
		CurrentlyPaused:    snapshot.CurrentlyPaused,
		TotalPausedMinutes: snapshot.TotalPausedMinutes,
	}})
}

// ListTransitions GET /tickets/:id/transitions.
func (h *SLAHandler) ListTransitions(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	targets, err := h.engine.AllowedStatusTargets(c.UserContext(), c.Params("id"), principal.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AllowedTargetsResponse{
		TicketID: c.Params("id"),
		Targets:  targets,
	}})
}

// PauseTimer POST /tickets/:id/sla/pause.
func (h *SLAHandler) PauseTimer(c *fiber.Ctx) error {
	var req dto.PauseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.engine.PauseTimer(c.UserContext(), c.Params("id"), h.clock.Now(), req.Reason); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"ticket_id": c.Params("id"), "paused": true}})
}

// ResumeTimer POST /tickets/:id/sla/resume.
func (h *SLAHandler) ResumeTimer(c *fiber.Ctx) error {
	if err := h.engine.ResumeTimer(c.UserContext(), c.Params("id"), h.clock.Now()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"ticket_id": c.Params("id"), "paused": false}})
}

// TicketCreated POST /internal/tickets/:id/created. Called by the ticketing
// subsystem when a ticket is stored; starts the SLA timer.
func (h *SLAHandler) TicketCreated(c *fiber.Ctx) error {
	at, err := h.eventTime(c)
	if err != nil {
		return err
	}
	if err := h.engine.HandleTicketCreated(c.UserContext(), c.Params("id"), at); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"ticket_id": c.Params("id")}})
}

// FirstResponse POST /internal/tickets/:id/first-response.
func (h *SLAHandler) FirstResponse(c *fiber.Ctx) error {
	at, err := h.eventTime(c)
	if err != nil {
		return err
	}
	if err := h.engine.RecordFirstResponse(c.UserContext(), c.Params("id"), at); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"ticket_id": c.Params("id")}})
}

// Resolution POST /internal/tickets/:id/resolution.
func (h *SLAHandler) Resolution(c *fiber.Ctx) error {
	at, err := h.eventTime(c)
	if err != nil {
		return err
	}
	if err := h.engine.RecordResolution(c.UserContext(), c.Params("id"), at); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"ticket_id": c.Params("id")}})
}

// eventTime uses the caller supplied occurrence time when given so replayed
// events land at their true instant, otherwise now.
func (h *SLAHandler) eventTime(c *fiber.Ctx) (time.Time, error) {
	var req dto.TicketEventRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return time.Time{}, apperrors.NewValidationError("invalid payload", nil)
		}
	}
	if req.OccurredAt != nil {
		return req.OccurredAt.UTC(), nil
	}
	return h.clock.Now(), nil
}
