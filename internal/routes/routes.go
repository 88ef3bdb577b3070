package routes

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/logistics-erp/internal/config"
	"github.com/example/logistics-erp/internal/events"
	"github.com/example/logistics-erp/internal/handlers"
	"github.com/example/logistics-erp/internal/middleware"
	"github.com/example/logistics-erp/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *zap.Logger, hub *events.Hub) {
	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat, logger)
	mailer := services.NewMailer(cfg.SMTP, logger)

	shipmentService := services.NewShipmentService(db, hub, logger)
	orderService := services.NewOrderService(db, shipmentService, hub, telegramService, logger)
	billingService := services.NewBillingService(db, logger)
	crmService := services.NewCRMService(db)
	dashboardService := services.NewDashboardService(db, cfg.LowStockThreshold)

	authHandler := handlers.NewAuthHandler(db, cfg, logger)
	resetHandler := handlers.NewPasswordResetHandler(db, cfg, mailer, logger)
	profileHandler := handlers.NewProfileHandler(db)
	inventoryHandler := handlers.NewInventoryHandler(db, cfg.LowStockThreshold)
	fleetHandler := handlers.NewFleetHandler(db)
	orderHandler := handlers.NewOrderHandler(orderService)
	eventsHandler := handlers.NewEventsHandler(hub, logger)
	shipmentHandler := handlers.NewShipmentHandler(shipmentService)
	billingHandler := handlers.NewBillingHandler(billingService)
	crmHandler := handlers.NewCRMHandler(crmService)
	adminHandler := handlers.NewAdminHandler(db, dashboardService, logger)

	authRequired := middleware.AuthMiddleware(cfg, db)
	adminOnly := middleware.RequireAdmin()

	// Auth routes
	app.Post("/register", authHandler.Register)
	app.Post("/login", authHandler.Login)
	app.Post("/forgot-password", resetHandler.ForgotPassword)
	app.Post("/reset-password", resetHandler.ResetPassword)

	api := app.Group("/api")

	inventory := api.Group("/inventory")
	inventory.Get("/", inventoryHandler.ListInventory)
	inventory.Post("/", inventoryHandler.CreateInventoryItem)
	inventory.Get("/warehouses", inventoryHandler.Warehouses)
	inventory.Post("/quantities", inventoryHandler.Quantities)
	inventory.Put("/:id", inventoryHandler.UpdateInventoryItem)

	fleet := api.Group("/fleet")
	fleet.Get("/", fleetHandler.ListVehicles)
	fleet.Post("/", fleetHandler.CreateVehicle)
	fleet.Get("/next-id", fleetHandler.NextID)

	shipments := api.Group("/shipments")
	shipments.Get("/", shipmentHandler.ListShipments)
	shipments.Post("/", shipmentHandler.CreateShipment)
	shipments.Get("/next-id", shipmentHandler.NextID)
	shipments.Get("/status/:status", shipmentHandler.ListByStatus)
	shipments.Put("/:id", shipmentHandler.UpdateShipmentStatus)

	user := api.Group("/user", authRequired)
	user.Get("/profile", profileHandler.GetProfile)
	user.Put("/profile", profileHandler.UpdateProfile)
	user.Get("/address", profileHandler.ListAddresses)
	user.Post("/address", profileHandler.CreateAddress)
	user.Put("/address", profileHandler.UpdateAddress)
	user.Put("/address/:id", profileHandler.UpdateAddress)

	orders := api.Group("/orders", authRequired)
	orders.Get("/", orderHandler.ListOrders)
	orders.Post("/", orderHandler.CreateOrder)
	orders.Get("/events", eventsHandler.Stream)
	orders.Get("/:id", orderHandler.GetOrder)
	orders.Put("/:id/status", adminOnly, orderHandler.UpdateOrderStatus)
	orders.Put("/:id/cancel", orderHandler.CancelOrder)
	orders.Put("/:id/delivery-email", orderHandler.UpdateDeliveryEmail)

	// Admin routes
	bills := api.Group("/bills", authRequired, adminOnly)
	bills.Get("/", billingHandler.ListBills)
	bills.Post("/", billingHandler.CreateBill)

	api.Get("/crm/customers", authRequired, adminOnly, crmHandler.ListCustomers)
	api.Get("/admin/dashboard", authRequired, adminOnly, adminHandler.DashboardStats)

	users := api.Group("/users", authRequired, adminOnly)
	users.Get("/", adminHandler.ListUsers)
	users.Put("/:id/role", adminHandler.UpdateUserRole)
}
