package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/saticiyiz/forum-backend/internal/realtime"
	"github.com/saticiyiz/forum-backend/internal/router"
	"github.com/saticiyiz/forum-backend/pkg/config"
	"github.com/saticiyiz/forum-backend/pkg/firebase"
	"github.com/saticiyiz/forum-backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Structured logger
	var logger *zap.Logger
	var err error
	if cfg.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize Firebase
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	// Websocket hub with heartbeat sweep
	hub := realtime.NewHub(logger)
	go hub.Heartbeat(30 * time.Second)

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	dispatcher := router.SetupRoutes(e, db, firebaseApp.AuthClient, hub, cfg, logger)
	go dispatcher.Run(ctx)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
