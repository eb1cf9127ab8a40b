package main

import (
	"context"
	"time"

	"treasurydash/internal/amqp"
	"treasurydash/internal/cli"
	"treasurydash/internal/services"
	"treasurydash/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger()
	logger.Info("Starting treasurydash-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	reader := cli.InitSheets(context.Background(), logger, cfg)
	imageLister := cli.InitImages(logger, cfg)

	// The worker announces every stored snapshot, so it waits for the broker
	// to come up. A broker that never comes up still doesn't block refreshes.
	connectCtx, connectCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	amqpClient, err := amqp.NewClientWithRetry(connectCtx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, 5)
	connectCancel()
	if err != nil {
		logger.Warn("AMQP unavailable, refresh events disabled", "error", err)
		amqpClient = nil
	} else {
		defer amqpClient.Close()
	}

	dashboards := services.NewDashboardService(reader, sqliteRepo, amqpClient, imageLister, logger, cfg.SnapshotRetention)

	refreshWorker := worker.NewRefreshWorker(dashboards, worker.RefreshWorkerConfig{
		Interval:    cfg.RefreshInterval,
		Concurrency: cfg.RefreshConcurrency,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer stopCancel()

		if err := refreshWorker.Stop(stopCtx); err != nil {
			logger.Error("Worker stop error", "error", err)
		}
	})

	if err := refreshWorker.Start(ctx); err != nil {
		logger.Error("Failed to start refresh worker", "error", err)
		return
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
