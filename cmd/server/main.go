package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/BerylCAtieno/loan-document-verifier/internal/config"
	"github.com/BerylCAtieno/loan-document-verifier/internal/db"
	"github.com/BerylCAtieno/loan-document-verifier/internal/metrics"
	"github.com/BerylCAtieno/loan-document-verifier/internal/ocr"
	"github.com/BerylCAtieno/loan-document-verifier/internal/pipeline"
	"github.com/BerylCAtieno/loan-document-verifier/internal/progress"
	"github.com/BerylCAtieno/loan-document-verifier/internal/providers"
	"github.com/BerylCAtieno/loan-document-verifier/internal/repository"
	"github.com/BerylCAtieno/loan-document-verifier/internal/requirements"
	"github.com/BerylCAtieno/loan-document-verifier/internal/router"
	"github.com/BerylCAtieno/loan-document-verifier/internal/services"
	"github.com/BerylCAtieno/loan-document-verifier/internal/storage"
	"github.com/BerylCAtieno/loan-document-verifier/internal/utils"
)

// bucketInboxPrefix is where files waiting to be matched are dropped in the bucket.
const bucketInboxPrefix = "inbox/"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel)

	// Initialize database
	database, err := db.NewSQLiteDB(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close()

	// Run migrations
	if err := db.RunMigrations(database); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	ctx := context.Background()

	// Object storage and the document ledger on top of it
	store, err := storage.New(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err, "driver", cfg.StorageDriver)
	}
	ledger := storage.NewLedger(store, logger)

	// Requirement tables
	tables, err := requirements.LoadTablesFile(cfg.RequirementsFile)
	if err != nil {
		logger.Fatal("Failed to load requirement tables", "error", err, "path", cfg.RequirementsFile)
	}
	resolver := requirements.NewResolver(tables)

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	docRepo := repository.NewRepository(database)
	processor := pipeline.NewProcessor(pipeline.Options{
		Engine:  newEngine(cfg, logger),
		Ledger:  ledger,
		Store:   docRepo,
		Tracker: progress.NewTrackerWithTTL(cfg.ProgressTTL),
		Metrics: m,
		Logger:  logger,
		Workers: cfg.PipelineWorkers,
	})

	docService := services.NewDocumentService(docRepo, processor, newProviders(cfg, store, logger), m, logger, cfg.MaxFileSize)
	reqService := services.NewRequirementService(resolver, logger)

	// Setup HTTP router
	handler := router.NewRouter(router.Options{
		Documents:    docService,
		Requirements: reqService,
		Logger:       logger,
		Gatherer:     reg,
		MaxFileSize:  cfg.MaxFileSize,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.OCRTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "storage", cfg.StorageDriver, "workers", cfg.PipelineWorkers)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}

// newEngine reads text natively and sends anything else to the remote OCR
// service when one is configured.
func newEngine(cfg *config.Config, logger *utils.Logger) ocr.Engine {
	var remote ocr.Engine
	if cfg.OCREndpoint != "" {
		remote = ocr.NewRemoteEngine(ocr.RemoteOptions{
			Endpoint:          cfg.OCREndpoint,
			APIKey:            cfg.OCRAPIKey,
			Timeout:           cfg.OCRTimeout,
			RequestsPerSecond: cfg.OCRRateLimit,
		}, logger)
		logger.Info("Remote OCR enabled", "endpoint", cfg.OCREndpoint, "rate_limit", cfg.OCRRateLimit)
	}
	return ocr.Fallback(ocr.NewTextEngine(), remote)
}

func newProviders(cfg *config.Config, store storage.Storage, logger *utils.Logger) *providers.Registry {
	wrap := func(p providers.Provider) providers.Provider {
		if cfg.ProviderCacheTTL > 0 {
			return providers.Cached(p, cfg.ProviderCacheTTL)
		}
		return p
	}

	registry := providers.NewRegistry(wrap(providers.NewBucketProvider("bucket", store, bucketInboxPrefix)))
	if cfg.ProviderDir != "" {
		registry.Register(wrap(providers.NewDirectoryProvider("local", cfg.ProviderDir)))
	}

	logger.Info("File providers registered", "providers", registry.Names())
	return registry
}
