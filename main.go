package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/sendahug/hug-api/pkg/api"
	"github.com/sendahug/hug-api/pkg/clients/highlevel"
	"github.com/sendahug/hug-api/pkg/config"
	"github.com/sendahug/hug-api/pkg/logger"
	"github.com/sendahug/hug-api/pkg/middleware"
	"github.com/sendahug/hug-api/pkg/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Infof("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.LoadConfig()

	if cfg.HighLevelAPIKey == "" {
		logger.Warnf("HIGHLEVEL_API_KEY is not set; CRM calls will fail with a configuration error")
	}

	// Initialize the CRM client and services
	crmClient := highlevel.NewClient(cfg)
	submissionService := services.NewHugSubmissionService(crmClient, cfg)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	// Initialize handlers and register routes
	handlers := api.NewHandlers(submissionService, crmClient, cfg)

	router.POST("/api/hug", handlers.HandleHugSubmission)
	router.DELETE("/api/contact", handlers.HandleDeleteContact)
	router.POST("/api/send-template", handlers.HandleSendTemplate)
	router.GET("/health", handlers.HealthCheck)

	logger.Infof("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatalf("Error starting server: %v", err)
	}
}
