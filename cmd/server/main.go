package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	cashcutapp "github.com/tesoreria/backend/internal/application/cashcuts"
	receiptapp "github.com/tesoreria/backend/internal/application/receipts"
	verificationapp "github.com/tesoreria/backend/internal/application/verification"
	"github.com/tesoreria/backend/internal/infrastructure/auth"
	"github.com/tesoreria/backend/internal/infrastructure/cache"
	"github.com/tesoreria/backend/internal/infrastructure/config"
	"github.com/tesoreria/backend/internal/infrastructure/logger"
	"github.com/tesoreria/backend/internal/infrastructure/persistence"
	"github.com/tesoreria/backend/internal/infrastructure/rendering"
	"github.com/tesoreria/backend/internal/infrastructure/scheduler"
	"github.com/tesoreria/backend/internal/infrastructure/storage"
	"github.com/tesoreria/backend/internal/infrastructure/verifier"
	"github.com/tesoreria/backend/internal/interfaces/http/handler"
	"github.com/tesoreria/backend/internal/interfaces/http/middleware"
	"github.com/tesoreria/backend/internal/interfaces/http/router"
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

	log.Info("Starting Caja Escolar backend",
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

	// Receipt repository doubles as the cash-cut entry source
	receiptRepo := persistence.NewGormReceiptRepository(db.DB)

	// Session receipt cache. Redis when reachable, in-memory otherwise.
	storeFactory := cache.NewReceiptStoreFactory(cfg.Redis, cfg.Session.ReceiptTTL, cache.WithLogger(log))
	receiptStore, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create session receipt store", zap.Error(err))
	}
	defer func() {
		if err := receiptStore.Close(); err != nil {
			log.Error("Error closing receipt store", zap.Error(err))
		}
	}()

	// Remote verification authority
	authority, err := verifier.NewHTTPAuthority(&verifier.Config{
		BaseURL: cfg.Verifier.BaseURL,
		APIKey:  cfg.Verifier.APIKey,
		Timeout: cfg.Verifier.Timeout,
	})
	if err != nil {
		log.Fatal("Failed to create verification authority client", zap.Error(err))
	}

	// Document rendering pipeline
	docRenderer, err := rendering.NewDocumentRenderer()
	if err != nil {
		log.Fatal("Failed to create document renderer", zap.Error(err))
	}
	pdfRenderer, err := rendering.NewChromedpRenderer(&rendering.ChromedpConfig{
		DefaultTimeout: cfg.Rendering.Timeout,
		RemoteURL:      cfg.Rendering.ChromeRemoteURL,
		NoSandbox:      cfg.Rendering.NoSandbox,
		Scale:          cfg.Rendering.Scale,
		Logger:         log,
	})
	if err != nil {
		log.Fatal("Failed to create PDF renderer", zap.Error(err))
	}
	defer func() {
		if err := pdfRenderer.Close(); err != nil {
			log.Error("Error closing PDF renderer", zap.Error(err))
		}
	}()

	// Rendered document archive
	pdfStorage, err := newPDFStorage(cfg, log)
	if err != nil {
		log.Fatal("Failed to create document storage", zap.Error(err))
	}

	// Application services
	receiptService := receiptapp.NewService(receiptRepo, receiptStore, docRenderer, pdfRenderer, log)
	verificationService := verificationapp.NewService(authority, log)
	cashCutService := cashcutapp.NewService(receiptRepo, docRenderer, pdfRenderer, log)

	// JWT validation for cashier sessions
	jwtService := auth.NewJWTService(cfg.JWT)

	// HTTP handlers
	receiptHandler := handler.NewReceiptHandler(receiptService)
	verificationHandler := handler.NewVerificationHandler(verificationService)
	cashCutHandler := handler.NewCashCutHandler(cashCutService)
	systemHandler := handler.NewSystemHandler()

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

	// Apply JWT authentication middleware to API routes.
	// QR verification is public so anyone can scan a printed receipt.
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
			"/api/v1/verification/verify",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Receipt domain (capture, reprint, cancellation)
	receiptRoutes := router.NewDomainGroup("receipts", "/receipts")
	receiptRoutes.POST("", receiptHandler.Create)
	receiptRoutes.GET("", receiptHandler.List)
	receiptRoutes.GET("/:folio", receiptHandler.Get)
	receiptRoutes.POST("/:folio/cancel", receiptHandler.Cancel)
	receiptRoutes.GET("/:folio/document", receiptHandler.Document)

	// Verification domain (public QR relay)
	verificationRoutes := router.NewDomainGroup("verification", "/verification")
	verificationRoutes.POST("/verify", verificationHandler.Verify)

	// Cash-cut domain (daily reconciliation reports)
	cashCutRoutes := router.NewDomainGroup("cashcuts", "/cashcuts")
	cashCutRoutes.GET("", cashCutHandler.Generate)
	cashCutRoutes.GET("/document", cashCutHandler.Document)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	// Register all domain groups
	r.Register(receiptRoutes).
		Register(verificationRoutes).
		Register(cashCutRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Background sweep of expired rendered documents
	var sweeper *scheduler.RetentionSweeper
	if cfg.Storage.RetentionDays > 0 {
		sweeperConfig := scheduler.DefaultRetentionSweeperConfig()
		sweeperConfig.MaxAge = time.Duration(cfg.Storage.RetentionDays) * 24 * time.Hour
		sweeper = scheduler.NewRetentionSweeper(sweeperConfig, pdfStorage, log)
		if err := sweeper.Start(context.Background()); err != nil {
			log.Warn("Failed to start retention sweeper", zap.Error(err))
		}
	}

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

	if sweeper != nil {
		if err := sweeper.Stop(ctx); err != nil {
			log.Error("Error stopping retention sweeper", zap.Error(err))
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newPDFStorage selects the document archive backend from configuration
func newPDFStorage(cfg *config.Config, log *zap.Logger) (rendering.PDFStorage, error) {
	if cfg.Storage.Backend == "s3" {
		archive, err := storage.NewS3DocumentArchive(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := archive.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return archive, nil
	}
	return rendering.NewFileSystemStorage(&rendering.FileSystemStorageConfig{
		BasePath:      cfg.Storage.BasePath,
		BaseURL:       cfg.Storage.BaseURL,
		RetentionDays: cfg.Storage.RetentionDays,
		Logger:        log,
	})
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
