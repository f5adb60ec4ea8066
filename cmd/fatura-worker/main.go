package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"fatura/internal/amqp"
	"fatura/internal/cli"
	applog "fatura/internal/log"
	gsheet "fatura/internal/sheets/google"
	"fatura/internal/worker"
)

func main() {
	if err := cli.LoadEnvFile(); err != nil {
		applog.New(applog.DefaultConfig()).Error("Failed to read .env", "error", err)
		os.Exit(1)
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		applog.New(applog.DefaultConfig()).Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)
	logger.Info("Starting fatura-worker", applog.FieldOperation, applog.OpStartup)

	if !cfg.SheetsEnabled() {
		logger.Error("Nothing to sync - GOOGLE_SPREADSHEET_ID is not set")
		os.Exit(1)
	}

	ctx, stop := cli.GracefulShutdown(context.Background(), logger)
	defer stop()

	store, err := cli.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open storage", "error", err, applog.FieldBackend, cfg.StorageBackend)
		os.Exit(1)
	}
	defer store.Close()
	if !store.Type.Persistent() {
		logger.Warn("Memory storage is not shared with the web server, exports will be empty")
	}

	exporter, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, logger.WithComponent(applog.ComponentSheets).Slog())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets exporter", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	syncWorker := worker.NewSyncWorker(store.Store, cfg.LedgerKey, exporter, cfg.CurrencyLabel, logger.Slog())

	// A failed first export is retried by the periodic sync.
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		client.WithLogger(logger.WithComponent(applog.ComponentAMQP).Slog())
		defer client.Close()

		g.Go(func() error {
			return client.ConsumeLedgerChanged(gctx, syncWorker.HandleLedgerChanged)
		})
	} else {
		logger.Info("Skipping AMQP message consumption - no AMQP_URL provided")
	}

	g.Go(func() error {
		return syncWorker.RunPeriodic(gctx, cfg.SyncInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	stats := syncWorker.Stats()
	logger.Info("Worker shutdown complete",
		applog.FieldOperation, applog.OpShutdown,
		"exports", stats.Exports,
		"failures", stats.Failures)
}
