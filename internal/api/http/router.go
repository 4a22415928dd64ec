package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intake-engine/internal/api/http/handlers"
	"github.com/spec-kit/intake-engine/internal/auth"
	"github.com/spec-kit/intake-engine/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Intake         *handlers.IntakeHandler
	Knowledge      *handlers.KnowledgeHandler
	Insights       *handlers.InsightsHandler
	Resolutions    *handlers.ResolutionsHandler
	Staff          *handlers.StaffHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/staff/login", cfg.Staff.Login)

	api := app.Group("/api/v1")
	api.Post("/intake/:source", cfg.Intake.Submit)
	api.Post("/chat", cfg.Intake.Chat)
	api.Get("/tickets/:number", cfg.Intake.GetTicket)

	api.Get("/knowledge/search", cfg.Knowledge.Search)
	api.Get("/knowledge/articles/:id", cfg.Knowledge.Get)
	api.Post("/knowledge/articles/:id/feedback", cfg.Knowledge.Feedback)

	api.Get("/insights/trending", cfg.Insights.Trending)
	api.Get("/insights/patterns", cfg.Insights.Patterns)

	staff := api.Group("", cfg.AuthMiddleware.Handle, auth.RequireStaffRole())
	staff.Post("/resolutions", cfg.Resolutions.Record)
	staff.Post("/knowledge/articles", cfg.Knowledge.Create)

	leads := api.Group("", cfg.AuthMiddleware.Handle, auth.RequireStaffRole(domain.PublishingRoles...))
	leads.Post("/knowledge/articles/:id/publish", cfg.Knowledge.Publish)
}
