package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-engine/internal/api/dto"
	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/engine"
	"github.com/spec-kit/sla-engine/internal/observability"
	"github.com/spec-kit/sla-engine/internal/repository"
	apperrors "github.com/spec-kit/sla-engine/pkg/util"
)

// AdminHandler manages statuses, transitions, SLA policies, and holidays.
type AdminHandler struct {
	statuses    repository.StatusRepository
	transitions repository.TransitionRepository
	policies    repository.SLARepository
	holidays    repository.HolidayRepository
	engine      *engine.Engine
	metrics     *observability.Metrics
}

// AdminDependencies bundles the handler's collaborators.
type AdminDependencies struct {
	Statuses    repository.StatusRepository
	Transitions repository.TransitionRepository
	Policies    repository.SLARepository
	Holidays    repository.HolidayRepository
	Engine      *engine.Engine
	Metrics     *observability.Metrics
}

// NewAdminHandler constructs handler.
func NewAdminHandler(deps AdminDependencies) *AdminHandler {
	return &AdminHandler{
		statuses:    deps.Statuses,
		transitions: deps.Transitions,
		policies:    deps.Policies,
		holidays:    deps.Holidays,
		engine:      deps.Engine,
		metrics:     deps.Metrics,
	}
}

// CreateStatus POST /admin/statuses.
func (h *AdminHandler) CreateStatus(c *fiber.Ctx) error {
	var req dto.CreateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" {
		return apperrors.NewValidationError("name required", nil)
	}
	if req.TimerAction == "" {
		req.TimerAction = domain.TimerActionNone
	}
	if !req.TimerAction.Valid() {
		return apperrors.NewValidationError("unknown timer_action", map[string]any{"timer_action": req.TimerAction})
	}

	status := &domain.Status{
			Name:        req.Name,
		IsDefault:   req.IsDefault,
		IsActive:    true,
		SortOrder:   req.SortOrder,
		TimerAction: req.TimerAction,
	}
	if err := h.statuses.Create(c.UserContext(), status); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": statusResponse(status)})
}

// ListStatuses GET /admin/statuses.
func (h *AdminHandler) ListStatuses(c *fiber.Ctx) error {
	statuses, err := h.statuses.ListActive(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.StatusResponse, 0, len(statuses))
	for i := range statuses {
		items = append(items, statusResponse(&statuses[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateTransition POST /admin/transitions.
func (h *AdminHandler) CreateTransition(c *fiber.Ctx) error {
	var req dto.CreateTransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.FromStatusID == "" || req.ToStatusID == "" {
		return apperrors.NewValidationError("from_status_id and to_status_id required", nil)
	}
	if len(req.AllowedRoles) == 0 {
		return apperrors.NewValidationError("allowed_roles required", nil)
	}
	roles := make([]domain.Role, 0, len(req.AllowedRoles))
	for _, raw := range req.AllowedRoles {
		role, err := domain.ParseRole(raw)
		if err != nil {
			return apperrors.NewValidationError("unknown role", map[string]any{"role": raw})
		}
		roles = append(roles, role)
	}

	tr := &domain.StatusTransition{
		FromStatusID: req.FromStatusID,
		ToStatusID:   req.ToStatusID,
		AllowedRoles: roles,
		IsActive:     true,
	}
	if err := h.transitions.Create(c.UserContext(), tr); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": transitionResponse(tr)})
}

// ListTransitions GET /admin/transitions.
func (h *AdminHandler) ListTransitions(c *fiber.Ctx) error {
	transitions, err := h.transitions.ListActive(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.TransitionResponse, 0, len(transitions))
	for i := range transitions {
		items = append(items, transitionResponse(&transitions[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// DeactivateTransition DELETE /admin/transitions/:id.
func (h *AdminHandler) DeactivateTransition(c *fiber.Ctx) error {
	if err := h.transitions.Deactivate(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// CreatePolicy POST /admin/sla-policies.
func (h *AdminHandler) CreatePolicy(c *fiber.Ctx) error {
	var req dto.CreatePolicyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ProductID == "" {
		return apperrors.NewValidationError("product_id required", nil)
	}
	if !req.Priority.Valid() {
		return apperrors.NewValidationError("unknown priority", map[string]any{"priority": req.Priority})
	}
	if req.ResponseTimeMinutes <= 0 || req.ResolutionTimeMinutes <= 0 {
		return apperrors.NewValidationError("response and resolution minutes must be positive", nil)
	}

	policy := &domain.SLAPolicy{
			ProductID:             req.ProductID,
		Priority:              req.Priority,
		ResponseTimeMinutes:   req.ResponseTimeMinutes,
		ResolutionTimeMinutes: req.ResolutionTimeMinutes,
		BusinessHoursOnly:     req.BusinessHoursOnly,
		IsActive:              true,
	}
	if err := h.policies.Create(c.UserContext(), policy); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": policyResponse(policy)})
}

// ListPolicies GET /admin/sla-policies.
func (h *AdminHandler) ListPolicies(c *fiber.Ctx) error {
	policies, err := h.policies.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.PolicyResponse, 0, len(policies))
	for i := range policies {
		items = append(items, policyResponse(&policies[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// DeactivatePolicy DELETE /admin/sla-policies/:id.
func (h *AdminHandler) DeactivatePolicy(c *fiber.Ctx) error {
	if err := h.policies.Deactivate(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// CreateHoliday POST /admin/holidays. Takes effect on the next sweep.
func (h *AdminHandler) CreateHoliday(c *fiber.Ctx) error {
	var req dto.CreateHolidayRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	day, err := time.Parse("2006-01-02", req.Day)
	if err != nil {
		return apperrors.NewValidationError("day must be YYYY-MM-DD", map[string]any{"day": req.Day})
	}

	holiday := &domain.Holiday{
			Day:         day,
		Name:        req.Name,
		IsRecurring: req.IsRecurring,
	}
	if err := h.holidays.Create(c.UserContext(), holiday); err != nil {
		return err
	}
	if err := h.engine.RefreshCalendar(c.UserContext()); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": holidayResponse(holiday)})
}

// ListHolidays GET /admin/holidays.
func (h *AdminHandler) ListHolidays(c *fiber.Ctx) error {
	holidays, err := h.holidays.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.HolidayResponse, 0, len(holidays))
	for i := range holidays {
		items = append(items, holidayResponse(&holidays[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// DeleteHoliday DELETE /admin/holidays/:id.
func (h *AdminHandler) DeleteHoliday(c *fiber.Ctx) error {
	if err := h.holidays.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	if err := h.engine.RefreshCalendar(c.UserContext()); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Metrics GET /admin/metrics.
func (h *AdminHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}

func statusResponse(s *domain.Status) dto.StatusResponse {
	return dto.StatusResponse{
		ID:          s.ID,
		Name:        s.Name,
		IsDefault:   s.IsDefault,
		IsActive:    s.IsActive,
		SortOrder:   s.SortOrder,
		TimerAction: s.TimerAction,
		CreatedAt:   s.CreatedAt,
	}
}

func transitionResponse(t *domain.StatusTransition) dto.TransitionResponse {
	return dto.TransitionResponse{
		ID:           t.ID,
		FromStatusID: t.FromStatusID,
		ToStatusID:   t.ToStatusID,
		AllowedRoles: t.AllowedRoles,
		IsActive:     t.IsActive,
		CreatedAt:    t.CreatedAt,
	}
}

func policyResponse(p *domain.SLAPolicy) dto.PolicyResponse {
	return dto.PolicyResponse{
		ID:                    p.ID,
		ProductID:             p.ProductID,
		Priority:              p.Priority,
		ResponseTimeMinutes:   p.ResponseTimeMinutes,
		ResolutionTimeMinutes: p.ResolutionTimeMinutes,
		BusinessHoursOnly:     p.BusinessHoursOnly,
		IsActive:              p.IsActive,
		CreatedAt:             p.CreatedAt,
	}
}

func holidayResponse(h *domain.Holiday) dto.HolidayResponse {
	return dto.HolidayResponse{
		ID:          h.ID,
		Day:         h.Day.Format("2006-01-02"),
		Name:        h.Name,
		IsRecurring: h.IsRecurring,
		CreatedAt:   h.CreatedAt,
	}
}
