package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/logistics-erp/internal/config"
	"github.com/example/logistics-erp/internal/events"
	"github.com/example/logistics-erp/internal/handlers"
	"github.com/example/logistics-erp/internal/middleware"
)

const requestTimeout = 30 * time.Second

// NewApp builds the Fiber application with middleware and routes.
func NewApp(db *gorm.DB, cfg *config.Config, logger *zap.Logger, hub *events.Hub) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Logistics ERP",
		ErrorHandler: handlers.ErrorHandler(logger),
		// Shipment statuses contain spaces and arrive percent-encoded.
		UnescapePath: true,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(middleware.RequestLogger(logger))
	app.Use(middleware.RequestTimeout(requestTimeout))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "status": "ok"})
	})

	Register(app, db, cfg, logger, hub)

	return app
}
