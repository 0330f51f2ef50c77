package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"bookstore/internal/cli"
	"bookstore/internal/config"
	"bookstore/internal/handlers"
	"bookstore/internal/middleware"
	"bookstore/internal/repositories"
	"bookstore/internal/services"
	"bookstore/pkg/rabbitmq"
)

// application is the process-wide store state, built once in main and
// handed to the front ends.
type application struct {
	cfg       config.Config
	catalog   *repositories.Catalog
	directory *repositories.AccountDirectory
	ledger    *repositories.OrderLedger

	authService      *services.AuthService
	catalogService   *services.CatalogService
	orderService     *services.OrderService
	inventoryService *services.InventoryService

	mqClient *rabbitmq.Client
}

func main() {
	cfg, err := config.Load(viper.New())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := newApp(cfg)
	if err != nil {
		log.Fatalf("Failed to start book store: %v", err)
	}
	defer app.Close()

	switch cfg.Mode {
	case config.ModeHTTP:
		err = app.serveHTTP()
	default:
		err = cli.NewShell(app.authService, app.catalogService, app.orderService, app.inventoryService, os.Stdin, os.Stdout).Run()
	}
	if err != nil {
		log.Printf("Error saving inventory data: %v", err)
	}
}

// newApp loads users and inventory through the configured gateway and wires the services.
func newApp(cfg config.Config) (*application, error) {
	gateway, err := openGateway(cfg)
	if err != nil {
		return nil, err
	}

	directory, err := repositories.LoadAccountDirectory(gateway)
	if err != nil {
		log.Printf("Error loading user data: %v", err)
		directory = repositories.NewAccountDirectory(nil)
	}
	catalog, err := repositories.LoadCatalog(gateway)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	log.Printf("Loaded %d user(s) and %d book(s)", directory.Len(), catalog.Len())

	app := &application{
		cfg:       cfg,
		catalog:   catalog,
		directory: directory,
		ledger:    repositories.NewOrderLedger(),
	}

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Printf("Order events disabled: %v", err)
		} else {
			app.mqClient = mqClient
			publisher = mqClient
		}
	}

	sessions := services.NewSessionManager()
	app.inventoryService = services.NewInventoryService(catalog, gateway)
	app.authService = services.NewAuthService(directory, catalog, gateway, sessions, cfg.JWTSecret, cfg.SessionTTL)
	app.catalogService = services.NewCatalogService(catalog, directory)
	app.orderService = services.NewOrderService(catalog, directory, app.ledger, app.inventoryService, publisher)
	return app, nil
}

func openGateway(cfg config.Config) (repositories.Gateway, error) {
	if cfg.StorageDriver == config.DriverFile {
		return repositories.NewFileGateway(cfg.UsersFile, cfg.InventoryFile), nil
	}

	dialector, err := repositories.OpenDialector(cfg.StorageDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return repositories.NewGormGateway(db)
}

// newRouter builds the HTTP API over the application's services.
func (a *application) newRouter() *fiber.App {
	router := fiber.New()
	router.Use(logger.New())

	router.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"books":  a.catalog.Len(),
			"orders": a.ledger.Len(),
		})
	})

	apiV1 := router.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(a.authService)
	authHandler.RegisterRoutes(apiV1)

	protectedRoutes := apiV1.Group("", middleware.AuthRequired(a.authService))
	authHandler.RegisterProtectedRoutes(protectedRoutes)
	handlers.NewBookHandler(a.catalogService).RegisterRoutes(protectedRoutes)
	handlers.NewOrderHandler(a.orderService).RegisterRoutes(protectedRoutes)

	return router
}

// serveHTTP runs the HTTP API until SIGINT or SIGTERM, then saves the inventory.
func (a *application) serveHTTP() error {
	router := a.newRouter()

	if a.mqClient != nil {
		if err := a.mqClient.ConsumeOrderEvents(rabbitmq.LogOrderEvent); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	}

	stopReaper := a.startSessionReaper(a.cfg.ReapInterval)
	defer stopReaper()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on port %s", a.cfg.Port)
		if err := router.Listen(a.cfg.Port); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")
	if err := router.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Printf("Ended %d open session(s)", a.authService.EndAllSessions())
	return a.inventoryService.Flush()
}

// startSessionReaper ends expired sessions every interval until the returned
// stop function is called.
func (a *application) startSessionReaper(interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case now := <-ticker.C:
				a.authService.ReapExpired(now)
			case <-done:
				return
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
	}
}

// Close releases the RabbitMQ connection, if any.
func (a *application) Close() {
	if a.mqClient == nil {
		return
	}
	if err := a.mqClient.Close(); err != nil {
		log.Printf("Error closing RabbitMQ client: %v", err)
	}
}
