package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/silvercare-health/adherence-backend/internal/audit"
	"github.com/silvercare-health/adherence-backend/internal/config"
	"github.com/silvercare-health/adherence-backend/internal/handler"
	"github.com/silvercare-health/adherence-backend/internal/middleware"
	"github.com/silvercare-health/adherence-backend/internal/pdf"
	"github.com/silvercare-health/adherence-backend/internal/repository"
	"github.com/silvercare-health/adherence-backend/internal/service"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize Zap logger
	var logger *zap.Logger
	if cfg.Server.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded successfully",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	// Initialize database connection pool with pgx
	pool, err := pgxpool.New(context.Background(), cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Successfully connected to database")

	// Initialize repositories
	scheduleRepo := repository.NewScheduleRepository(pool, logger)
	adherenceRepo := repository.NewAdherenceRepository(pool, logger)

	// Initialize the analytics engine and services
	engine := service.NewAnalyticsEngine(logger)
	analyticsService := service.NewAnalyticsService(
		scheduleRepo,
		adherenceRepo,
		engine,
		cfg.Analytics.DefaultPeriodDays,
		cfg.Analytics.MaxPeriodDays,
		logger,
	)
	adherenceService := service.NewAdherenceService(adherenceRepo, scheduleRepo, logger)

	pdfGenerator := pdf.NewPDFGenerator(logger)
	reportService := service.NewReportService(analyticsService, pdfGenerator, logger)

	auditLogger := audit.NewLogger(pool, logger)

	// Initialize handlers
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, reportService, auditLogger, logger)
	adherenceHandler := handler.NewAdherenceHandler(adherenceService, auditLogger, logger)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin router
	r := gin.New()

	// Add recovery middleware (must be first)
	r.Use(middleware.RecoveryMiddleware(logger))

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Configure appropriately for production
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestLoggingMiddleware(logger))
	r.Use(middleware.ErrorLoggingMiddleware(logger))

	// Register routes
	v1 := r.Group("/api/v1")
	{
		v1.POST("/analytics/medication", analyticsHandler.PostMedicationAnalytics)
		v1.GET("/analytics/medication/report", analyticsHandler.GetAdherenceReportPDF)
		v1.POST("/adherence/logs", adherenceHandler.PostDoseEvent)
		v1.GET("/adherence/logs/:scheduleId", adherenceHandler.GetDoseHistory)
	}

	r.GET("/health", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			logger.Error("health check failed: database unreachable", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "disconnected",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"database": "connected",
			"service":  "adherence-backend",
			"version":  "1.0.0",
		})
	})

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	pool.Close()

	logger.Info("Server exited")
}
