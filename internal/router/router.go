package router

import (
	"log"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/saticiyiz/forum-backend/internal/handlers"
	"github.com/saticiyiz/forum-backend/internal/middleware"
	"github.com/saticiyiz/forum-backend/internal/models"
	"github.com/saticiyiz/forum-backend/internal/notifications"
	"github.com/saticiyiz/forum-backend/internal/points"
	"github.com/saticiyiz/forum-backend/internal/reactions"
	"github.com/saticiyiz/forum-backend/internal/realtime"
	"github.com/saticiyiz/forum-backend/internal/repositories"
	"github.com/saticiyiz/forum-backend/internal/session"
	"github.com/saticiyiz/forum-backend/pkg/config"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies.
// It returns the email dispatcher so main can run its drain loop.
func SetupRoutes(e *echo.Echo, db *config.DB, firebaseAuthClient *auth.Client, hub *realtime.Hub, cfg *config.Config, logger *zap.Logger) *notifications.EmailDispatcher {
	// AutoMigrate PostgreSQL models
	err := db.Postgres.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Topic{},
		&models.Comment{},
		&models.Follow{},
		&models.TopicLike{},
		&models.CommentLike{},
		&models.Notification{},
		&models.NotificationPreferences{},
		&models.UserPoints{},
		&models.UserRole{},
		&models.UserReport{},
		&models.SystemSetting{},
		&models.AdminAction{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	topicRepo := repositories.NewPostgresTopicRepository(db.Postgres)
	commentRepo := repositories.NewPostgresCommentRepository(db.Postgres)
	likeRepo := repositories.NewPostgresLikeRepository(db.Postgres)
	followRepo := repositories.NewPostgresFollowRepository(db.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(db.Postgres)
	pointsRepo := repositories.NewPostgresPointsRepository(db.Postgres)
	adminRepo := repositories.NewPostgresAdminRepository(db.Postgres)
	draftRepo := repositories.NewMongoDraftRepository(db.Mongo.Database(cfg.MongoDatabase))

	// --- Initialize Services ---
	bridge := realtime.NewRedisBridge(db.Redis, logger)
	notificationService := notifications.NewService(notificationRepo, bridge, logger)
	pointsService := points.NewService(pointsRepo, logger)
	reactionService := reactions.NewService(likeRepo, topicRepo, commentRepo, userRepo, notificationService, pointsService, logger)
	sessionProvider := session.NewProvider(userRepo, pointsRepo, logger)

	emailInterval, err := time.ParseDuration(cfg.EmailDispatchInterval)
	if err != nil {
		emailInterval = time.Minute
	}
	dispatcher := notifications.NewEmailDispatcher(
		notificationRepo, userRepo, &notifications.LogSender{Logger: logger}, emailInterval, logger)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(sessionProvider, userRepo, firebaseAuthClient)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo, pointsService, followRepo)
	userHandler.RegisterProfileRoutes(api)
	log.Println("User profile routes configured.")

	// Topic and category routes
	topicHandler := handlers.NewTopicHandler(topicRepo, userRepo, pointsService)
	topicHandler.RegisterTopicRoutes(api)
	log.Println("Topic routes configured.")

	// Comment routes
	commentHandler := handlers.NewCommentHandler(commentRepo, topicRepo, userRepo, notificationService, pointsService, logger)
	commentHandler.RegisterCommentRoutes(api)
	log.Println("Comment routes configured.")

	// Reaction routes
	likeHandler := handlers.NewLikeHandler(reactionService)
	likeHandler.RegisterLikeRoutes(api)
	log.Println("Reaction routes configured.")

	// Follow routes
	followHandler := handlers.NewFollowHandler(followRepo, userRepo, notificationService, pointsService, logger)
	followHandler.RegisterFollowRoutes(api)
	log.Println("Follow routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	// Draft autosave routes
	draftHandler := handlers.NewDraftHandler(draftRepo)
	draftHandler.RegisterDraftRoutes(api)
	log.Println("Draft routes configured.")

	// Websocket notification feed
	wsHandler := handlers.NewWSHandler(hub, notificationService, bridge, logger)
	wsHandler.RegisterWSRoutes(api)
	log.Println("Websocket routes configured.")

	// Reports and admin
	adminHandler := handlers.NewAdminHandler(adminRepo, topicRepo, notificationService, logger)
	adminHandler.RegisterReportRoutes(api)

	moderation := e.Group("/api/v1/admin")
	moderation.Use(middleware.JWTAuthMiddleware())
	moderation.Use(middleware.RequireRole(adminRepo, models.RoleAdmin, models.RoleModerator))
	adminHandler.RegisterAdminRoutes(moderation)

	adminOnly := e.Group("/api/v1/admin")
	adminOnly.Use(middleware.JWTAuthMiddleware())
	adminOnly.Use(middleware.RequireRole(adminRepo, models.RoleAdmin))
	adminHandler.RegisterSettingsRoutes(api, adminOnly)
	log.Println("Admin routes configured.")

	// Category management is admin only
	adminOnly.POST("/categories", topicHandler.CreateCategory)

	log.Println("All routes configured.")
	return dispatcher
}
