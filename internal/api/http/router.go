package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-engine/internal/api/http/handlers"
	"github.com/spec-kit/sla-engine/internal/auth"
	"github.com/spec-kit/sla-engine/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	SLA            *handlers.SLAHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("/:id/status", cfg.SLA.ChangeStatus)
	tickets.Get("/:id/sla", cfg.SLA.GetSnapshot)
	tickets.Get("/:id/transitions", cfg.SLA.ListTransitions)
	tickets.Post("/:id/sla/pause", auth.RequireRole(domain.RoleOperator, domain.RoleAdmin), cfg.SLA.PauseTimer)
	tickets.Post("/:id/sla/resume", auth.RequireRole(domain.RoleOperator, domain.RoleAdmin), cfg.SLA.ResumeTimer)

	internal := app.Group("/internal/tickets", cfg.AuthMiddleware.Handle, auth.RequireInternal())
	internal.Post("/:id/created", cfg.SLA.TicketCreated)
	internal.Post("/:id/first-response", cfg.SLA.FirstResponse)
	internal.Post("/:id/resolution", cfg.SLA.Resolution)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Post("/statuses", cfg.Admin.CreateStatus)
	admin.Get("/statuses", cfg.Admin.ListStatuses)
	admin.Post("/transitions", cfg.Admin.CreateTransition)
	admin.Get("/transitions", cfg.Admin.ListTransitions)
	admin.Delete("/transitions/:id", cfg.Admin.DeactivateTransition)
	admin.Post("/sla-policies", cfg.Admin.CreatePolicy)
	admin.Get("/sla-policies", cfg.Admin.ListPolicies)
	admin.Delete("/sla-policies/:id", cfg.Admin.DeactivatePolicy)
	admin.Post("/holidays", cfg.Admin.CreateHoliday)
	admin.Get("/holidays", cfg.Admin.ListHolidays)
	admin.Delete("/holidays/:id", cfg.Admin.DeleteHoliday)
	admin.Get("/metrics", cfg.Admin.Metrics)
}
