package main

import (
	"os"

	_ "paydesk/api/swagger" // swagger docs
	"paydesk/internal/database"
	"paydesk/internal/filestore"
	"paydesk/internal/handler"
	"paydesk/internal/middleware"
	"paydesk/internal/notification"
	"paydesk/internal/repository"
	"paydesk/internal/service"
	"paydesk/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newFileStore prefers the configured S3-compatible object store and falls back
// to the in-memory store when none is configured. The fallback loses files on
// restart, so it logs loudly.
func newFileStore() filestore.Provider {
	endpoint := os.Getenv("S3_ENDPOINT")
	if endpoint == "" {
		log.Warn("S3_ENDPOINT not set, attachments will be stored in memory")
		return filestore.NewMemoryStore()
	}

	store, err := filestore.NewMinioStore(
		endpoint,
		os.Getenv("S3_ACCESS_KEY"),
		os.Getenv("S3_SECRET_KEY"),
		getenv("S3_BUCKET", "paydesk-attachments"),
		os.Getenv("S3_USE_SSL") == "true",
	)
	if err != nil {
		log.WithError(err).Warn("object store unavailable, attachments will be stored in memory")
		return filestore.NewMemoryStore()
	}
	return store
}

// @title           Payment Request Desk API
// @version         1.0
// @description     Back-office API for payment request workflows: dynamic request types, classification, status transitions and audit trail.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Info("No configs/.env file found or error loading it")
	}

	log.SetFormatter(&log.JSONFormatter{})
	if os.Getenv("GIN_MODE") != "release" {
		log.SetLevel(log.DebugLevel)
	}

	dsn := "postgres://" + getenv("DB_USER", "postgres") +
		":" + getenv("DB_PASSWORD", "postgres") +
		"@" + getenv("DB_HOST", "localhost") +
		":" + getenv("DB_PORT", "5432") +
		"/" + getenv("DB_NAME", "postgres") +
		"?sslmode=" + getenv("DB_SSLMODE", "disable")

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.WithError(err).Fatal("Database connection failed")
	}
	log.Info("Connected to PostgreSQL successfully")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	files := newFileStore()
	dispatcher := notification.NewDispatcher(os.Getenv("SMS_GATEWAY_URL"), wsHub)

	// Set up dependencies (Repository -> Service -> Handler)
	txm := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	typeRepo := repository.NewRequestTypeRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	subGroupRepo := repository.NewSubGroupRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	userService := service.NewUserService(userRepo)
	typeService := service.NewRequestTypeService(typeRepo, txm)
	classificationService := service.NewClassificationService(groupRepo, subGroupRepo, typeRepo, txm)
	requestService := service.NewRequestService(requestRepo, typeRepo, groupRepo, subGroupRepo, activityRepo, files, txm)
	activityService := service.NewActivityService(activityRepo, requestRepo)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	typeHandler := handler.NewRequestTypeHandler(typeService)
	classificationHandler := handler.NewClassificationHandler(classificationService)
	requestHandler := handler.NewRequestHandler(requestService, activityService, dispatcher)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	typeHandler.RegisterRoutes(router.Group(""))
	classificationHandler.RegisterRoutes(router.Group(""))
	requestHandler.RegisterRoutes(router.Group(""))

	port := getenv("PORT", "8080")

	log.WithField("port", port).Info("Server listening")
	if err := router.Run(":" + port); err != nil {
		log.WithError(err).Fatal("Server failed")
	}
}
