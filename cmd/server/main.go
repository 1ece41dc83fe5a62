package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/fabrica/internal/auth"
	"github.com/localnerve/fabrica/internal/config"
	"github.com/localnerve/fabrica/internal/database"
	"github.com/localnerve/fabrica/internal/handlers"
	"github.com/localnerve/fabrica/internal/middleware"
	"github.com/localnerve/fabrica/internal/records"
	"github.com/localnerve/fabrica/internal/schema"
	"github.com/localnerve/fabrica/internal/store"
	"github.com/localnerve/fabrica/internal/types"

	_ "github.com/localnerve/fabrica/docs/api" // Swagger docs
)

// @title Fabrica API
// @version 1.0.0
// @description Dynamic model publishing and generic record CRUD service
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/fabrica
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Select the descriptor store
	var descriptors store.DescriptorStore
	switch cfg.DescriptorStore {
	case config.StoreFile:
		fileStore, err := store.NewFileStore(cfg.ModelsDir)
		if err != nil {
			log.Fatalf("Failed to open models directory: %v", err)
		}
		descriptors = fileStore
	default:
		descriptors = store.NewGormStore(db)
	}

	// Build the registry and load every persisted model before serving
	registry := schema.NewRegistry(descriptors)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loaded, failures, err := registry.LoadAll(ctx)
	if err != nil {
		log.Fatalf("Failed to load models: %v", err)
	}
	for _, f := range failures {
		log.Printf("Skipped invalid model descriptor %q: %s", f.Name, f.Err)
	}
	log.Printf("Loaded %d model(s)", len(loaded))

	// Reload the registry when the file store's directory changes
	if cfg.WatchModels {
		if watchable, ok := descriptors.(store.Watchable); ok {
			err := watchable.Watch(ctx, func() {
				if _, failures, err := registry.LoadAll(ctx); err != nil {
					log.Printf("Model reload failed: %v", err)
				} else {
					for _, f := range failures {
						log.Printf("Skipped invalid model descriptor %q: %s", f.Name, f.Err)
					}
					log.Printf("Models reloaded: %d registered", registry.Count())
				}
			})
			if err != nil {
				log.Fatalf("Failed to watch models directory: %v", err)
			}
		}
	}

	// Select the auth provider
	var provider auth.Provider
	var jwtProvider *auth.JWTProvider
	switch cfg.AuthMode {
	case config.AuthAuthorizer:
		provider = auth.NewAuthorizerProvider(cfg.AuthzURL, cfg.AuthzClientID)
		log.Printf("Authorizer will be initialized on first authenticated request")
	default:
		jwtProvider = auth.NewJWTProvider(cfg.JWTSecret, time.Duration(cfg.JWTTTLMinutes)*time.Minute)
		provider = jwtProvider
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("fabrica")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Health
	healthHandler := &handlers.HealthHandler{Config: cfg, DB: db, Registry: registry}
	app.Get("/health", healthHandler.Health)

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	authenticated := middleware.Authenticate(provider)

	// Auth routes (JWT mode only)
	if jwtProvider != nil {
		authHandler := &handlers.AuthHandler{
			Accounts: auth.NewService(db),
			Tokens:   jwtProvider,
		}
		authGroup := api.Group("/auth")
		authGroup.Post("/register", authHandler.Register)
		authGroup.Post("/login", authHandler.Login)
		authGroup.Get("/profile", authenticated, authHandler.Profile)
	}

	// Model administration routes
	modelHandler := &handlers.ModelHandler{Registry: registry}
	modelGroup := api.Group("/models", authenticated)
	modelGroup.Get("/", modelHandler.ListModels)
	modelGroup.Get("/:name", modelHandler.GetModel)
	modelGroup.Post("/", middleware.RequireRoles(schema.AdminRole), modelHandler.PublishModel)
	modelGroup.Put("/:name", middleware.RequireRoles(schema.AdminRole), modelHandler.UpdateModel)
	modelGroup.Delete("/:name", middleware.RequireRoles(schema.AdminRole), modelHandler.DeleteModel)

	// Generic record CRUD for any registered model
	recordHandler := &handlers.RecordHandler{
		Registry: registry,
		Service:  records.NewService(records.NewGormStore(db)),
	}
	api.Post("/:modelName", authenticated, recordHandler.CreateRecord)
	api.Get("/:modelName", authenticated, recordHandler.ListRecords)
	api.Get("/:modelName/:id", authenticated, recordHandler.GetRecord)
	api.Put("/:modelName/:id", authenticated, recordHandler.UpdateRecord)
	api.Delete("/:modelName/:id", authenticated, recordHandler.DeleteRecord)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Resource not found",
		})
	})

	// Graceful shutdown
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigs
		log.Println("Gracefully shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	// Start server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler maps errors to the {error: message} envelope
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()

	var customErr *types.CustomError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &customErr):
		code = customErr.Code
		message = customErr.Message
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}
