package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/smkdev-id/simagang-api/internal/config"
	"github.com/smkdev-id/simagang-api/internal/handler"
	"github.com/smkdev-id/simagang-api/internal/middleware"
	"github.com/smkdev-id/simagang-api/internal/models"
	"github.com/smkdev-id/simagang-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	PlacementHandler *handler.PlacementHandler
	JournalHandler   *handler.JournalHandler
	ActivityHandler  *handler.ActivityHandler
	DashboardHandler *handler.DashboardHandler
	CompanyHandler   *handler.CompanyHandler
	UploadHandler    *handler.UploadHandler
	JWTMiddleware    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.PlacementHandler != nil {
		placements := api.Group("/placements", jwtMiddleware)
		deps.PlacementHandler.Register(placements)
	}

	if deps.JournalHandler != nil {
		journals := api.Group("/journals", jwtMiddleware,
			middleware.RateLimit("journals", 30, time.Minute))
		deps.JournalHandler.Register(journals)
	}

	// The audit trail is an admin surface end to end.
	if deps.ActivityHandler != nil {
		activities := api.Group("/activities", jwtMiddleware,
			middleware.RequireRole(models.RoleAdmin))
		deps.ActivityHandler.Register(activities)
	}

	if deps.DashboardHandler != nil {
		dashboard := api.Group("/dashboard", jwtMiddleware)
		deps.DashboardHandler.Register(dashboard)
	}

	if deps.CompanyHandler != nil {
		companies := api.Group("/companies", jwtMiddleware)
		deps.CompanyHandler.Register(companies)
	}

	if deps.UploadHandler != nil {
		uploads := api.Group("/uploads", jwtMiddleware,
			middleware.RequireRole(models.RoleSiswa),
			middleware.RateLimit("uploads", 10, time.Minute))
		deps.UploadHandler.Register(uploads)
	}
}
