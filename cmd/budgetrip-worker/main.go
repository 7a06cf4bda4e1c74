package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"budgetrip/internal/amqp"
	"budgetrip/internal/backend"
	"budgetrip/internal/cli"
	"budgetrip/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("budgetrip-worker")

	logger.Info("Starting budgetrip-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	exportBackend, err := backend.New(context.Background(), backend.ConfigFromApp(cfg))
	if err != nil {
		logger.Error("Failed to initialize export backend", "error", err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exportWorker := worker.NewExportWorker(repo, exportBackend, exportBackend, cfg.ExportBatchSize)

	// Catch up on events exported while the worker was down.
	logger.Info("Performing startup export check...")
	if err := exportWorker.StartupExportCheck(ctx); err != nil {
		logger.Error("Startup export check failed", "error", err)
		// Keep going; the periodic sweep retries.
	}

	go func() {
		err := amqpClient.ConsumeMessages(ctx,
			exportWorker.HandleExportMessage, exportWorker.HandleDeleteMessage)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
		}
		cancel()
	}()

	// Periodic sweep for events whose export message was lost.
	ticker := time.NewTicker(cfg.ExportSweepInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := exportWorker.ProcessUnexportedEvents(ctx); err != nil {
					logger.Error("Periodic export sweep failed", "error", err)
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down worker...")
	cancel()

	// Give in-flight handlers a moment to finish.
	time.Sleep(2 * time.Second)
	logger.Info("Worker shutdown complete")
}
