package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Afatsiawu/FMS/internal/amqp"
	"github.com/Afatsiawu/FMS/internal/cache"
	"github.com/Afatsiawu/FMS/internal/cli"
	"github.com/Afatsiawu/FMS/internal/core"
	fmshttp "github.com/Afatsiawu/FMS/internal/http"
	applog "github.com/Afatsiawu/FMS/internal/log"
	"github.com/Afatsiawu/FMS/internal/services"
	"github.com/Afatsiawu/FMS/internal/sheets"
	gsheet "github.com/Afatsiawu/FMS/internal/sheets/google"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting fms",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"tithe_channel_mode", cfg.TitheChannelMode)

	boot := context.Background()
	store := cli.OpenBackend(boot, logger, cfg)

	// Without a broker the district entry is written inline.
	var publisher services.AllocationPublisher
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, allocating inline", applog.FieldError, err)
		} else {
			publisher = client
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	var mirror sheets.ArchiveWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(boot, gsheet.Options{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			ArchiveSheet:       cfg.GoogleArchiveSheetName,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Warn("Google Sheets mirror disabled", applog.FieldError, err)
		} else {
			mirror = client
		}
	}

	history := cache.NewLRUCache[core.ArchivedPeriod](cfg.HistoryCacheSize, cfg.HistoryCacheTTL)
	caches := cache.NewManager()
	caches.Register(history)
	caches.StartCleanup(time.Minute)

	opts := cfg.AggregateOptions()
	finance := services.NewFinanceService(store.Repository, publisher)
	reports := services.NewReportService(store.Repository, opts, cfg.FeedLimit)
	periods := services.NewPeriodService(store.Repository, opts, history, mirror)

	srv := fmshttp.NewServer(":"+cfg.Port, fmshttp.Services{
		Finance: finance,
		Reports: reports,
		Periods: periods,
		Ready:   store.Ready,
	}, fmshttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger.WithComponent(applog.ComponentHTTP),
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		caches.Stop()
		if err := finance.Close(); err != nil {
			logger.Error("Failed to close finance service", applog.FieldError, err)
		}
	})

	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", applog.FieldError, err)
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
