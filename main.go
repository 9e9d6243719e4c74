package main

import (
	"database/sql"
	"fmt"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"

	"envdamage-service/config"
	"envdamage-service/database"
	"envdamage-service/handlers"
	"envdamage-service/middleware"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Warnf(".env file not found, using system environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Database connection
	db, err := setupDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize database schema and seed categories
	if err := database.InitializeSchema(db); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}

	// Initialize service
	service := database.NewReportService(db)

	// Setup Gin router
	router := setupRouter(cfg, service)

	// Start server
	log.Infof("Server starting on %s:%s", cfg.Host, cfg.Port)
	if err := router.Run(cfg.Host + ":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupDatabase(cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&multiStatements=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

func setupRouter(cfg *config.Config, service *database.ReportService) *gin.Engine {
	router := gin.Default()

	// Apply global middleware
	router.Use(middleware.CORSMiddleware())

	// Initialize handlers
	h := handlers.NewHandlers(service, cfg.PageSize)

	// Public routes
	router.GET("/health", h.HealthCheck)
	router.POST("/calculate-damage", h.CalculateDamage)
	router.POST("/ecological-data", h.EcologicalData)
	router.GET("/categories", h.ListCategories)

	// Protected routes
	protected := router.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		protected.GET("/dashboard", h.Dashboard)

		// Environmental reports
		protected.GET("/reports", h.ListReports)
		protected.POST("/reports", h.CreateReport)
		protected.GET("/reports/:id", h.GetReport)
		protected.PUT("/reports/:id", h.UpdateReport)
		protected.DELETE("/reports/:id", h.DeleteReport)

		// Category administration
		protected.POST("/categories", h.CreateCategory)
		protected.PUT("/categories/:id", h.UpdateCategory)
	}

	return router
}
