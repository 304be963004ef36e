package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/compliance-service/internal/api/http/handlers"
	"github.com/spec-kit/compliance-service/internal/auth"
	"github.com/spec-kit/compliance-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Reviewers      *handlers.ReviewersHandler
	Items          *handlers.ItemsHandler
	Assignments    *handlers.AssignmentsHandler
	Settings       *handlers.SettingsHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Reviewers.Register)
	authGroup.Post("/login", cfg.Reviewers.Login)

	items := app.Group("/items", cfg.AuthMiddleware.Handle)
	items.Post("", cfg.Items.CreateItem)
	items.Get("", cfg.Items.ListItems)
	items.Get("/:id", cfg.Items.GetItem)
	items.Get("/:id/history", cfg.Items.GetHistory)
	items.Post("/:id/status", cfg.Items.TransitionStatus)
	items.Get("/:id/assignments", cfg.Assignments.ListItemAssignments)

	assignerOnly := auth.RequireRole(domain.RoleAdmin, domain.RoleApprovalManager, domain.RoleDecisionMaker)
	items.Post("/:id/assign/auto", assignerOnly, cfg.Assignments.AutoAssign)
	// Manual assignment authorization is enforced in the service against the
	// configured assigner roles, which an admin may change at runtime.
	items.Post("/:id/assign", cfg.Assignments.ManualAssign)

	assignments := app.Group("/assignments", cfg.AuthMiddleware.Handle)
	assignments.Get("/my", cfg.Assignments.ListMyAssignments)

	settings := app.Group("/settings", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	settings.Get("/assignment", cfg.Settings.GetSettings)
	settings.Put("/assignment", cfg.Settings.UpdateSettings)

	notifications := app.Group("/notifications", cfg.AuthMiddleware.Handle)
	notifications.Get("", cfg.Notifications.ListInbox)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)
}
