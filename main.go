package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/duderstadt-center/button-backend/database"
	"github.com/duderstadt-center/button-backend/internal/jobs"
	"github.com/duderstadt-center/button-backend/internal/models"
	"github.com/duderstadt-center/button-backend/internal/routes"
	"github.com/duderstadt-center/button-backend/internal/services"
	"github.com/duderstadt-center/button-backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		err := godotenv.Load(".env")
		if err != nil {
			err = godotenv.Load("environments/.env.development")
			if err != nil {
				log.Println("⚠️  No .env file found - checking environment variables")
			}
		}
	}

	// Initialize storage
	var store storage.Store

	// Check if we should use memory store (for testing / single-kiosk setups)
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (config rows seeded from env)")
		memStore := storage.NewMemoryStore()
		seedDeviceFromEnv(memStore)
		store = memStore
	} else {
		// Connect to database
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		// Run migrations
		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.Device{},
			&models.AuditEntry{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		// Use database store
		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")
	}
	storage.SetStore(store)

	// Initialize the messaging gateway
	gateway, err := newGateway()
	if err != nil {
		log.Fatal("Failed to initialize messaging gateway:", err)
	}
	log.Printf("✅ Messaging gateway initialized (%s driver)", gatewayDriver())

	// Initialize the reply queue client
	queue, err := services.NewHTTPReplyQueue()
	if err != nil {
		log.Fatal("Failed to initialize reply queue client:", err)
	}
	log.Println("✅ Reply queue client initialized")

	// Initialize core services
	deviceConfig := services.NewDeviceConfigService(store)
	rateLimiter := services.NewRateLimiter()
	sessionManager := services.NewSessionManager()
	auditSink := services.NewStoreAuditSink(store)
	display := services.NewScreenDisplay()
	dispatcher := services.NewDispatcher(deviceConfig, rateLimiter, gateway, queue,
		sessionManager, auditSink, display)

	// Initialize and start maintenance jobs
	maintenanceJob := jobs.NewMaintenanceJob(store, gateway)
	maintenanceJob.Start()

	log.Println("✅ All services initialized and scheduled jobs started")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "Help Button Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Setup routes
	routes.SetupRoutes(app, store, dispatcher, sessionManager, display, deviceConfig)

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		log.Println("⏹️  Stopping maintenance jobs...")
		maintenanceJob.Stop()
		log.Println("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 Help Button Backend starting on port %s", port)
	log.Printf("📊 Storage: %s", getStorageType())
	log.Printf("📨 Gateway: %s", gatewayDriver())
	log.Println("========================================")

	log.Fatal(app.Listen(":" + port))
}

// newGateway picks the messaging gateway driver from GATEWAY_DRIVER
func newGateway() (services.NotificationGateway, error) {
	switch gatewayDriver() {
	case "twilio":
		return services.NewTwilioGateway()
	default:
		return services.NewRelayGateway()
	}
}

func gatewayDriver() string {
	driver := os.Getenv("GATEWAY_DRIVER")
	if driver == "" {
		driver = "relay"
	}
	return driver
}

func getStorageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory"
	}
	return "PostgreSQL Database"
}

// seedDeviceFromEnv registers this kiosk's device row when running without a
// shared config database
func seedDeviceFromEnv(store storage.Store) {
	deviceID := os.Getenv("DEVICE_ID")
	if deviceID == "" {
		log.Println("⚠️  DEVICE_ID not set - no device seeded")
		return
	}

	rateLimit := 300
	if raw := os.Getenv("DEVICE_RATE_LIMIT_SECONDS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			log.Printf("⚠️  Invalid DEVICE_RATE_LIMIT_SECONDS %q, using %d", raw, rateLimit)
		} else {
			rateLimit = parsed
		}
	}

	device, err := store.CreateDevice(&models.DeviceRegistration{
		DeviceID:         deviceID,
		Location:         os.Getenv("DEVICE_LOCATION"),
		ChannelID:        os.Getenv("DEVICE_CHANNEL_ID"),
		RateLimitSeconds: rateLimit,
		MessageText:      os.Getenv("DEVICE_MESSAGE"),
	})
	if err != nil {
		log.Printf("⚠️  Failed to seed device %s: %v", deviceID, err)
		return
	}
	log.Printf("✅ Seeded device %s (%s)", device.DeviceID, device.Location)
}
