package main

import (
	"log"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/clearforum/backend/internal/router"
	"github.com/clearforum/backend/pkg/config"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Structured logger for the notification core
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, cfg, db.Postgres, db.Mongo, db.Redis, logger)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
