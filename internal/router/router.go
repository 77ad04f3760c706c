package router

import (
	"log"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clearforum/backend/internal/handlers"
	"github.com/clearforum/backend/internal/middleware"
	"github.com/clearforum/backend/internal/models"
	"github.com/clearforum/backend/internal/notifications"
	"github.com/clearforum/backend/internal/repositories"
	"github.com/clearforum/backend/pkg/config"
	"github.com/clearforum/backend/pkg/mailer"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, pgdb *gorm.DB, mgClient *mongo.Client, rdb *redis.Client, logger *zap.Logger) {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.Profile{},
		&models.Subscription{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	profileRepo := repositories.NewPostgresProfileRepository(pgdb)
	subscriptionRepo := repositories.NewPostgresSubscriptionRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)

	// --- Email pipeline ---
	renderer, err := mailer.NewTemplateRenderer()
	if err != nil {
		log.Fatalf("Failed to parse email templates: %v", err)
	}
	smtpMailer := mailer.NewSMTPMailer(cfg.SMTPAddr, cfg.SMTPUser, cfg.SMTPPass)
	var deliveries *mongo.Collection
	if mgClient != nil {
		deliveries = mgClient.Database("clearforum").Collection("email_deliveries")
	}
	dispatcher := notifications.NewDispatcher(
		renderer, smtpMailer, deliveries,
		cfg.EmailFrom, cfg.SiteName, cfg.SiteURL, logger)

	// --- Notification core ---
	counter := notifications.NewUnreadCounter(rdb, logger)
	engine := notifications.NewEngine(pgdb, subscriptionRepo, notificationRepo, profileRepo, dispatcher, counter, logger)
	feed := notifications.NewFeed(notificationRepo, counter, logger)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// Notification feed routes
	notificationHandler := handlers.NewNotificationHandler(feed)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	// Follow routes
	followHandler := handlers.NewFollowHandler(subscriptionRepo)
	followHandler.RegisterFollowRoutes(api)
	log.Println("Follow routes configured.")

	// Domain event routes (content services)
	eventHandler := handlers.NewEventHandler(engine)
	eventHandler.RegisterEventRoutes(api)
	log.Println("Event routes configured.")

	log.Println("All routes configured.")
}
