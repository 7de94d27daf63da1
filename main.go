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
	_ "github.com/lib/pq"
	"github.com/orchid-health/breastcare-backend/internal/audit"
	"github.com/orchid-health/breastcare-backend/internal/azure"
	"github.com/orchid-health/breastcare-backend/internal/config"
	"github.com/orchid-health/breastcare-backend/internal/handler"
	"github.com/orchid-health/breastcare-backend/internal/middleware"
	"github.com/orchid-health/breastcare-backend/internal/pdf"
	"github.com/orchid-health/breastcare-backend/internal/repository"
	"github.com/orchid-health/breastcare-backend/internal/security"
	"github.com/orchid-health/breastcare-backend/internal/service"
	"go.uber.org/zap"
)

var (
	logger *zap.Logger
	pool   *pgxpool.Pool
	cfg    *config.Config
)

func main() {
	// Load configuration
	var err error
	cfg, err = config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize Zap logger
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
	pool, err = pgxpool.New(context.Background(), cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Successfully connected to database")

	// Azure OpenAI is optional: without it clarifications degrade to a
	// canned fallback message.
	var clarifier service.CompletionClient
	if cfg.OpenAIEnabled() {
		openAIClient, err := azure.NewOpenAIClient(
			cfg.Azure.OpenAI.Endpoint,
			cfg.Azure.OpenAI.APIKey,
			cfg.Azure.OpenAI.Deployment,
			logger,
		)
		if err != nil {
			logger.Fatal("Failed to initialize Azure OpenAI client", zap.Error(err))
		}
		clarifier = openAIClient
	} else {
		logger.Warn("Azure OpenAI not configured, clarifications disabled")
	}

	// Blob storage is optional too; report export falls back to in-memory
	// storage for local development.
	var blobClient azure.BlobStorage
	if cfg.StorageEnabled() {
		blobClient, err = azure.NewBlobStorageClient(
			cfg.Azure.Storage.AccountName,
			cfg.Azure.Storage.AccountKey,
			cfg.Azure.Storage.ReportContainer,
			logger,
		)
		if err != nil {
			logger.Fatal("Failed to initialize Azure Blob Storage client", zap.Error(err))
		}
	} else {
		logger.Warn("Azure Blob Storage not configured, using in-memory report storage")
		blobClient = azure.NewMockBlobStorageClient(logger)
	}

	// History encryption at rest is enabled by configuring a key.
	var encryptor *security.Encryptor
	encryptionKey, err := cfg.DecodedEncryptionKey()
	if err != nil {
		logger.Fatal("Invalid history encryption key", zap.Error(err))
	}
	if encryptionKey != nil {
		encryptor, err = security.NewEncryptor(encryptionKey)
		if err != nil {
			logger.Fatal("Failed to initialize encryptor", zap.Error(err))
		}
		logger.Info("History encryption enabled")
	}

	// Initialize repositories
	kvRepo := repository.NewKVRepository(pool, logger)

	// Initialize audit logger
	auditLogger := audit.NewLogger(pool, logger)

	// Initialize history store and warm it from storage. Load failures are
	// swallowed; the app starts with an empty history.
	historyStore := service.NewHistoryStore(kvRepo, encryptor, logger)
	historyStore.Load(context.Background())

	// Initialize services
	examService := service.NewExamService(historyStore, auditLogger, logger)
	selfCheckService := service.NewSelfCheckService(historyStore, auditLogger, clarifier, logger)
	summaryService := service.NewSummaryService(historyStore, logger)

	pdfGenerator := pdf.NewGenerator(logger)
	reportService := service.NewReportService(historyStore, blobClient, pdfGenerator, auditLogger, logger)

	// Initialize handlers
	examHandler := handler.NewExamHandler(examService, logger)
	selfCheckHandler := handler.NewSelfCheckHandler(selfCheckService, logger)
	historyHandler := handler.NewHistoryHandler(historyStore, summaryService, auditLogger, logger)
	reportHandler := handler.NewReportHandler(reportService, logger)
	healthHandler := handler.NewHealthHandler(pool, logger)

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

	// Add request ID middleware
	r.Use(middleware.RequestIDMiddleware())

	// Add request logging middleware
	r.Use(middleware.RequestLoggingMiddleware(logger))

	// Add error logging middleware
	r.Use(middleware.ErrorLoggingMiddleware(logger))

	// Add slow request logging middleware
	r.Use(middleware.SlowRequestLoggingMiddleware(logger, 1*time.Second))

	// Register routes
	r.GET("/health", healthHandler.Check)

	v1 := r.Group("/api/v1")
	{
		exam := v1.Group("/exam/sessions")
		{
			exam.POST("", examHandler.StartSession)
			exam.POST("/:sessionId/answers", examHandler.RecordAnswer)
			exam.POST("/:sessionId/next", examHandler.Advance)
			exam.POST("/:sessionId/previous", examHandler.Retreat)
			exam.GET("/:sessionId/progress", examHandler.Progress)
			exam.POST("/:sessionId/complete", examHandler.Complete)
		}

		selfCheck := v1.Group("/self-check/sessions")
		{
			selfCheck.POST("", selfCheckHandler.StartSession)
			selfCheck.POST("/:sessionId/next", selfCheckHandler.NextInstruction)
			selfCheck.POST("/:sessionId/previous", selfCheckHandler.PreviousInstruction)
			selfCheck.POST("/:sessionId/chat", selfCheckHandler.EnterChat)
			selfCheck.POST("/:sessionId/chat/replies", selfCheckHandler.ChatReply)
			selfCheck.POST("/:sessionId/chat/clarifications", selfCheckHandler.Clarify)
			selfCheck.GET("/:sessionId/progress", selfCheckHandler.Progress)
			selfCheck.POST("/:sessionId/reset", selfCheckHandler.Reset)
		}

		history := v1.Group("/history")
		{
			history.GET("", historyHandler.List)
			history.GET("/summary", historyHandler.Summary)
			history.GET("/export", historyHandler.Export)
			history.DELETE("", historyHandler.Erase)
		}

		reports := v1.Group("/reports")
		{
			reports.POST("", reportHandler.Generate)
			reports.GET("/download", reportHandler.Download)
		}
	}

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

	// In-flight history writes are fire-and-forget; flush once more so a
	// just-completed assessment survives the restart.
	if err := historyStore.Flush(ctx); err != nil {
		logger.Error("Failed to flush assessment history", zap.Error(err))
	}

	pool.Close()

	logger.Info("Server exited")
}
