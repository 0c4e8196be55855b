package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	reportapp "github.com/ipms/backend/internal/application/report"
	"github.com/ipms/backend/internal/infrastructure/config"
	"github.com/ipms/backend/internal/infrastructure/delivery"
	"github.com/ipms/backend/internal/infrastructure/logger"
	"github.com/ipms/backend/internal/infrastructure/persistence"
	"github.com/ipms/backend/internal/infrastructure/rendering"
	"github.com/ipms/backend/internal/infrastructure/scheduler"
	"github.com/ipms/backend/internal/interfaces/http/handler"
	"github.com/ipms/backend/internal/interfaces/http/middleware"
	"github.com/ipms/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting IPMS Report Service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	financialRepo := persistence.NewGormFinancialReportRepository(db.DB)
	policyRepo := persistence.NewGormPolicyReportRepository(db.DB)
	clientRepo := persistence.NewGormClientReportRepository(db.DB)
	activityRepo := persistence.NewGormActivityLogRepository(db.DB)
	scheduleRepo := persistence.NewGormScheduledReportRepository(db.DB)
	errorRepo := persistence.NewGormReportErrorRepository(db.DB)

	// Initialize renderers
	templateEngine, err := rendering.NewTemplateEngine()
	if err != nil {
		log.Fatal("Failed to initialize template engine", zap.Error(err))
	}

	pdfConfig := rendering.DefaultPDFRendererConfig()
	pdfConfig.Timeout = cfg.Report.RenderTimeout
	pdfRenderer := rendering.NewPDFRenderer(templateEngine, pdfConfig)
	defer pdfRenderer.Close()

	renderers := rendering.NewRendererSet(
		pdfRenderer,
		rendering.NewExcelRenderer(),
		rendering.NewCSVRenderer(),
	)

	// Initialize artifact storage
	var storage rendering.ArtifactStorage
	switch cfg.Storage.Backend {
	case "s3":
		s3Storage, err := rendering.NewS3ArtifactStorage(context.Background(), cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize S3 artifact storage", zap.Error(err))
		}
		storage = s3Storage
		log.Info("Using S3 artifact storage", zap.String("bucket", cfg.Storage.S3Bucket))
	default:
		fsStorage, err := rendering.NewFileSystemStorage(cfg.Report.OutputDir)
		if err != nil {
			log.Fatal("Failed to initialize filesystem artifact storage", zap.Error(err))
		}
		storage = fsStorage
		log.Info("Using filesystem artifact storage", zap.String("dir", cfg.Report.OutputDir))
	}

	// Email delivery
	sender := delivery.NewSendGridSender(cfg.Delivery, log)

	// Application services
	builderService := reportapp.NewBuilderService(
		financialRepo, policyRepo, clientRepo, activityRepo,
		renderers, storage, cfg.Report.RetentionDays, log,
	)
	scheduledService := reportapp.NewScheduledReportService(
		scheduleRepo, errorRepo, builderService, sender, log,
	)

	// Start the due-report sweeper (if enabled)
	var sweeper *scheduler.ReportSweeper
	if cfg.Scheduler.Enabled {
		sweeper = scheduler.NewReportSweeper(cfg.Scheduler, scheduledService, log)
		if err := sweeper.Start(); err != nil {
			log.Fatal("Failed to start report sweeper", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := sweeper.Stop(ctx); err != nil {
				log.Error("Error stopping report sweeper", zap.Error(err))
			}
		}()
		log.Info("Report sweeper started", zap.String("schedule", cfg.Scheduler.CronSchedule))
	}

	// Initialize HTTP handlers
	reportHandler := handler.NewReportHandler(builderService)
	if cfg.HTTP.RateLimitEnabled {
		// Rendering is expensive, so generation gets a stricter limiter
		generateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests/10+1, cfg.HTTP.RateLimitWindow)
		reportHandler.WithGenerateMiddleware(middleware.GenerateRateLimit(generateLimiter))
	}
	scheduledHandler := handler.NewScheduledReportHandler(scheduledService)
	var sweeperStatus handler.SweeperStatus
	if sweeper != nil {
		sweeperStatus = sweeper
	}
	systemHandler := handler.NewSystemHandler(db.DB, sweeperStatus)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(reportHandler).
		Register(scheduledHandler).
		Register(systemHandler).
		Register(router.RegistrarFunc(func(rg *gin.RouterGroup) {
			// Simple ping at the API root for basic health checks
			rg.GET("/ping", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"message": "pong"})
			})
		}))
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
