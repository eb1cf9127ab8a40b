package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"treasurydash/internal/amqp"
	"treasurydash/internal/cli"
	apphttp "treasurydash/internal/http"
	"treasurydash/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	reader := cli.InitSheets(context.Background(), logger, cfg)
	imageLister := cli.InitImages(logger, cfg)

	// AMQP is optional for the API server: without a broker, manual refreshes
	// still store snapshots, they just don't announce them.
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, refresh events disabled", "error", err)
		amqpClient = nil
	} else {
		defer amqpClient.Close()
	}

	dashboards := services.NewDashboardService(reader, sqliteRepo, amqpClient, imageLister, logger, cfg.SnapshotRetention)

	srv := apphttp.NewServer(":"+cfg.Port, dashboards)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Drop cached payloads when the worker stores a fresh snapshot.
	if amqpClient != nil {
		go func() {
			err := amqpClient.ConsumeDashboardRefresh(ctx, func(msg *amqp.DashboardRefreshMessage) error {
				srv.InvalidateCompany(msg.Company)
				logger.Info("Cache invalidated by refresh event",
					"company", msg.Company,
					"snapshot_id", msg.SnapshotID)
				return nil
			})
			if err != nil && err != context.Canceled {
				logger.Warn("Refresh event consumption stopped", "error", err)
			}
		}()
	}

	_, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting treasurydash server", "port", cfg.Port, "backend", cfg.SheetsBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
