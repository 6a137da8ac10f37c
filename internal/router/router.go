package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/kboateng/adesua-go-api/internal/config"
	"github.com/kboateng/adesua-go-api/internal/handler"
	"github.com/kboateng/adesua-go-api/internal/middleware"
	"github.com/kboateng/adesua-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	GradeHandler      *handler.GradeHandler
	AssignmentHandler *handler.AssignmentHandler
	ReportHandler     *handler.ReportHandler
	TermHandler       *handler.TermHandler
	AuditHandler      *handler.AuditHandler
	SeedHandler       *handler.SeedHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Grade records are a staff surface; students read their results
	// through the report endpoints.
	if deps.GradeHandler != nil {
		grades := api.Group("/grades", jwtMiddleware,
			middleware.RequireRole("admin", "teacher"),
			middleware.RateLimit("grades", 120, time.Minute),
		)
		deps.GradeHandler.Register(grades)
	}

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/class-assignments", jwtMiddleware,
			middleware.RequireRole("admin", "teacher"),
		)
		deps.AssignmentHandler.Register(assignments)
	}

	if deps.ReportHandler != nil {
		reports := api.Group("/reports", jwtMiddleware)
		deps.ReportHandler.Register(reports)
	}

	if deps.TermHandler != nil {
		terms := api.Group("/terms", jwtMiddleware, middleware.RequireRole("admin"))
		deps.TermHandler.Register(terms)
	}

	if deps.AuditHandler != nil {
		audit := api.Group("/audit", jwtMiddleware, middleware.RequireRole("admin"))
		deps.AuditHandler.Register(audit)
	}

	// Seeding carries its own token guard instead of JWT so fixtures can be
	// loaded into a fresh environment.
	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(api.Group("/seed"))
	}
}
