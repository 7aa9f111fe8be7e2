package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-compliance-service/internal/api/http/handlers"
	"github.com/spec-kit/sla-compliance-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	SLA            *handlers.SLAHandler
	Compliance     *handlers.ComplianceHandler
	Violations     *handlers.ViolationHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	app.Post("/auth/token", cfg.Auth.Token)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)

	sla := api.Group("/sla")
	sla.Get("/configurations", cfg.SLA.ListConfigurations)
	sla.Get("/configurations/lookup", cfg.SLA.GetConfiguration)
	sla.Get("/statistics", cfg.SLA.Statistics)
	sla.Post("/refresh", cfg.SLA.Refresh)

	compliance := api.Group("/compliance")
	compliance.Get("/tickets/:id", cfg.Compliance.GetTicketSLA)
	compliance.Get("/metrics", cfg.Compliance.Metrics)
	compliance.Get("/dashboard", cfg.Compliance.Dashboard)

	violations := api.Group("/violations")
	violations.Post("/:id/validate", cfg.Violations.Validate)
	violations.Get("/statistics", cfg.Violations.Statistics)
}
