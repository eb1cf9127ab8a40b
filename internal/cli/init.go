// Package cli provides common CLI initialization utilities.
// This package consolidates repeated initialization patterns across
// cmd/treasurydash and cmd/treasurydash-worker.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"treasurydash/internal/config"
	"treasurydash/internal/images"
	applog "treasurydash/internal/log"
	"treasurydash/internal/sheets"
	gsheet "treasurydash/internal/sheets/google"
	mem "treasurydash/internal/sheets/memory"
	"treasurydash/internal/storage"
)

// SetupLogger initializes structured logging with default settings.
// Returns the configured logger and sets it as the default logger.
func SetupLogger() *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite initializes a SQLite repository with the given path.
// Returns the repository or exits the process on failure.
func InitSQLite(logger *applog.Logger, dbPath string) *storage.SQLiteRepository {
	sqliteRepo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return sqliteRepo
}

// InitSheets builds the spreadsheet backend selected by SHEETS_BACKEND.
// The google backend exits the process when the client cannot be built;
// the memory backend serves empty ranges and is meant for local development.
func InitSheets(ctx context.Context, logger *applog.Logger, cfg *config.Config) sheets.RangeReader {
	switch cfg.SheetsBackend {
	case "google":
		cli, err := gsheet.New(ctx, cfg.GoogleAPIKey)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err, "backend", cfg.SheetsBackend)
			os.Exit(1)
		}
		logger.Info("Initialized Google Sheets backend", "backend", cfg.SheetsBackend)
		return cli
	default:
		logger.Info("Initialized memory backend", "backend", cfg.SheetsBackend)
		return mem.New()
	}
}

// InitImages builds the chart image lister. Deployments without a bucket,
// and buckets we fail to reach, fall back to placeholder images.
func InitImages(logger *applog.Logger, cfg *config.Config) images.Lister {
	if cfg.S3BucketName == "" {
		logger.Info("Chart image bucket not configured, serving placeholders")
		return images.PlaceholderLister{}
	}

	lister, err := images.New(images.Config{
		Bucket:      cfg.S3BucketName,
		KeyPrefix:   cfg.S3KeyPrefix,
		Region:      cfg.AWSRegion,
		EndpointURL: cfg.AWSEndpointURL,
		AccessKeyID: cfg.AWSAccessKeyID,
		SecretKey:   cfg.AWSSecretKey,
	}, logger)
	if err != nil {
		logger.Warn("Failed to initialize image storage, serving placeholders",
			"error", err,
			applog.FieldBucket, cfg.S3BucketName)
		return images.PlaceholderLister{}
	}

	logger.Info("Initialized chart image storage",
		applog.FieldBucket, cfg.S3BucketName,
		applog.FieldPrefix, cfg.S3KeyPrefix)
	return lister
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup()
		}

		cancel()

		select {
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		case <-time.After(2 * time.Second):
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
