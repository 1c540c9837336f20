package routes

import (
	"stockdesk/internal/adapters/http/handlers"
	"stockdesk/internal/adapters/http/middleware"
	"stockdesk/internal/config"
	"stockdesk/internal/core/domain"
	"stockdesk/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

// Services are the core services the HTTP layer exposes
type Services struct {
	Gate    *services.AuthGate
	Ledger  *services.ContactLedger
	Catalog *services.CatalogService
}

// Setup configures all routes for the application. dbPing backs /health and
// may be nil.
func Setup(app *fiber.App, svc Services, cfg *config.Config, log *zap.Logger, dbPing func() error) {
	healthHandler := handlers.NewHealthHandler(cfg, dbPing)
	authHandler := handlers.NewAuthHandler(svc.Gate, cfg, log)
	userHandler := handlers.NewUserHandler(svc.Gate)
	productHandler := handlers.NewProductHandler(svc.Catalog)
	contactHandler := handlers.NewContactHandler(svc.Ledger)
	webhookHandler := handlers.NewWebhookHandler(svc.Ledger, cfg, log)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	apiV1 := app.Group("/api/v1", middleware.SessionMiddleware(cfg))

	setupAuthRoutes(apiV1.Group("/auth", middleware.NoCacheHeaders()), authHandler, svc.Gate)

	// Account administration (admin only)
	apiV1.Post("/users",
		middleware.RequireRole(svc.Gate, domain.RoleAdmin),
		middleware.StrictRateLimiter(),
		userHandler.CreateUser,
	)

	productRoutes := apiV1.Group("/products", middleware.RequireSession(svc.Gate))
	productRoutes.Get("/", productHandler.ListProducts)
	productRoutes.Post("/", productHandler.AddProduct)

	apiV1.Get("/contacts/:externalId/messages",
		middleware.RequireRole(svc.Gate, domain.RoleAdmin),
		middleware.NoCacheHeaders(),
		contactHandler.History,
	)

	// Channel webhooks (authenticated by signature, not session)
	apiV1.Post("/webhooks/twilio", webhookHandler.Twilio)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, gate middleware.Authorizer) {
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.RequireSession(gate), handler.Me)
}
