package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockdesk/internal/adapters/http/middleware"
	"stockdesk/internal/adapters/http/routes"
	"stockdesk/internal/adapters/persistence/memory"
	"stockdesk/internal/adapters/persistence/models"
	"stockdesk/internal/adapters/persistence/repositories"
	"stockdesk/internal/config"
	"stockdesk/internal/core/services"
	"stockdesk/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "stockdesk/docs" // Swagger docs
)

// @title stockdesk API
// @version 1.0
// @description Shop admin backend: sessions, accounts, product catalog and the chat message ledger.

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

type stores struct {
	accounts repositories.AccountRepository
	contacts repositories.ContactRepository
	messages repositories.MessageRepository
	products repositories.ProductRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.AppMode, cfg.Log.Level, "stockdesk")
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	var (
		db   *gorm.DB
		repo stores
	)
	switch cfg.DBDriver {
	case "memory":
		zl.Warn("using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		repo = stores{store.Accounts(), store.Contacts(), store.Messages(), store.Products()}
	default:
		db, err = config.ConnectDatabase(cfg, zl)
		if err != nil {
			zl.Fatal("failed to connect to database", zap.Error(err))
		}
		defer func() { _ = config.CloseDatabase(db) }()

		// Auto migrate (creates tables and indexes if not exist)
		if err := models.AutoMigrate(db); err != nil {
			zl.Fatal("failed to auto migrate", zap.Error(err))
		}
		zl.Info("database migration completed")

		repo = stores{
			repositories.NewAccountRepository(db),
			repositories.NewContactRepository(db),
			repositories.NewMessageRepository(db),
			repositories.NewProductRepository(db),
		}
	}

	gate := services.NewAuthGate(repo.accounts, cfg, zl)
	ledger := services.NewContactLedger(repo.contacts, repo.messages, nil, zl)
	catalog := services.NewCatalogService(repo.products, zl)

	seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := config.NewSeeder(gate, cfg.Admin, zl).Run(seedCtx); err != nil {
		zl.Error("failed to seed admin account", zap.Error(err))
	}
	cancel()

	stats := services.NewStatsService(repo.accounts, repo.contacts, repo.messages, repo.products, zl)
	if err := stats.Start(cfg.Stats.Schedule); err != nil {
		zl.Fatal("invalid LEDGER_STATS_SCHEDULE", zap.String("schedule", cfg.Stats.Schedule), zap.Error(err))
	}
	defer stats.Stop()

	app := fiber.New(fiber.Config{
		AppName:      "stockdesk API v1.0",
		ErrorHandler: middleware.ErrorHandler(zl),
	})

	middleware.Setup(app, cfg)

	routes.Setup(app, routes.Services{
		Gate:    gate,
		Ledger:  ledger,
		Catalog: catalog,
	}, cfg, zl, func() error { return config.HealthCheck(db) })

	go gracefulShutdown(app, zl)

	zl.Info("server starting", zap.String("port", cfg.Port), zap.String("mode", cfg.AppMode), zap.String("db_driver", cfg.DBDriver))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zl.Error("server stopped", zap.Error(err))
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App, zl *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zl.Error("error during shutdown", zap.Error(err))
	}
	zl.Info("server stopped gracefully")
}
