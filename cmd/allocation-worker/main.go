package main

import (
	"context"
	"os"
	"time"

	"github.com/Afatsiawu/FMS/internal/amqp"
	"github.com/Afatsiawu/FMS/internal/backend"
	"github.com/Afatsiawu/FMS/internal/cli"
	applog "github.com/Afatsiawu/FMS/internal/log"
	"github.com/Afatsiawu/FMS/internal/services"
	"github.com/Afatsiawu/FMS/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	// The worker and the server only meet through a shared database.
	if backend.BackendType(cfg.DataBackend) != backend.SQLiteBackend {
		logger.Error("Allocation worker requires DATA_BACKEND=sqlite", "backend", cfg.DataBackend)
		os.Exit(1)
	}

	logger.Info("Starting allocation-worker",
		"db_path", cfg.SQLiteDBPath,
		"batch_size", cfg.AllocationBatchSize,
		"interval", cfg.AllocationInterval)

	store := cli.OpenBackend(context.Background(), logger, cfg)

	var consumer worker.Consumer
	var client *amqp.Client
	if cfg.AMQPEnabled() {
		var err error
		client, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		consumer = client
	} else {
		logger.Info("AMQP disabled, running the pending scan only")
	}

	w := worker.NewAllocationWorker(services.NewAllocationService(store.Repository),
		cfg.AllocationBatchSize, cfg.AllocationInterval)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if client != nil {
			if err := client.Close(); err != nil {
				logger.Error("Failed to close AMQP client", applog.FieldError, err)
			}
		}
		if err := store.Cleanup(); err != nil {
			logger.Error("Failed to close store", applog.FieldError, err)
		}
	})

	if err := w.StartupCheck(ctx); err != nil {
		logger.Error("Startup allocation check failed", applog.FieldError, err)
	}

	if err := w.Run(ctx, consumer); err != nil {
		logger.Error("Allocation worker stopped", applog.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
}
