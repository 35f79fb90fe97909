package routes

import (
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/duderstadt-center/button-backend/internal/handlers"
	"github.com/duderstadt-center/button-backend/internal/middleware"
	"github.com/duderstadt-center/button-backend/internal/services"
	"github.com/duderstadt-center/button-backend/internal/storage"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, store storage.Store, dispatcher *services.Dispatcher,
	manager *services.SessionManager, display *services.ScreenDisplay,
	devices *services.DeviceConfigService) {

	pressHandler := handlers.NewPressHandler(dispatcher)
	displayHandler := handlers.NewDisplayHandler(display)
	sessionHandler := handlers.NewSessionHandler(manager)
	auditHandler := handlers.NewAuditHandler(store)
	deviceHandler := handlers.NewDeviceHandler(store, devices)
	webhookHandler := handlers.NewWebhookHandler(manager)
	healthHandler := handlers.NewHealthHandler("1.0.0")

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Help Button Backend",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"health":  "/health",
				"press":   "/api/press",
				"display": "/api/display",
				"webhook": "/webhook/reply",
				"admin":   "/admin",
			},
		})
	})

	app.Get("/health", healthHandler.Check)

	// API routes
	api := app.Group("/api")
	api.Post("/press", pressHandler.HandlePress)
	api.Get("/display", displayHandler.GetDisplay)
	api.Get("/sessions/active", sessionHandler.GetActiveSessions)
	api.Get("/audit", auditHandler.GetRecent)

	// ========== WEBHOOK ROUTES ==========
	webhooks := app.Group("/webhook")

	// Reply webhook - ENVIRONMENT-AWARE VALIDATION
	if os.Getenv("ENVIRONMENT") == "development" || os.Getenv("DISABLE_WEBHOOK_VALIDATION") == "true" {
		// Development: Skip validation for local relays
		webhooks.Post("/reply", webhookHandler.HandleReply)
		if os.Getenv("ENVIRONMENT") == "development" {
			println("⚠️  Reply webhook validation DISABLED for development")
		}
	} else {
		// Production: Validate webhook signature
		webhooks.Post("/reply", middleware.ValidateRelaySignature(), webhookHandler.HandleReply)
	}

	// ========== ADMIN ROUTES ==========
	admin := app.Group("/admin", middleware.RequireAdminToken())
	admin.Post("/devices", deviceHandler.RegisterDevice)
	admin.Get("/devices", deviceHandler.ListDevices)
}
