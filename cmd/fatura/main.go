package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fatura/internal/cli"
	apphttp "fatura/internal/http"
	applog "fatura/internal/log"
	"fatura/internal/services"
)

const shutdownTimeout = 30 * time.Second

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
	logger := cli.SetupLogger(cfg, applog.ComponentApp)

	ctx, stop := cli.GracefulShutdown(context.Background(), logger)
	defer stop()

	store, err := cli.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open storage", "error", err, applog.FieldBackend, cfg.StorageBackend)
		os.Exit(1)
	}
	defer store.Close()

	l, err := cli.OpenLedger(ctx, cfg, store.Store, logger)
	if err != nil {
		logger.Error("Failed to load ledger", "error", err, applog.FieldLedgerKey, cfg.LedgerKey)
		os.Exit(1)
	}

	publisher, err := cli.NewPublisher(cfg, logger)
	if err != nil {
		// The ledger works without change notifications.
		logger.Warn("AMQP unavailable, spreadsheet sync disabled", "error", err)
	}
	var changes services.ChangePublisher
	if publisher != nil {
		changes = publisher
	}

	svc := services.NewInvoiceService(l, changes, logger.WithComponent(applog.ComponentLedger))
	defer svc.Close()

	srv, err := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		CurrencyLabel:      cfg.CurrencyLabel,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
		Ready:              cli.ReadyCheck(store.Store),
	})
	if err != nil {
		logger.Error("Failed to build HTTP server", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting fatura server",
			"port", cfg.Port,
			applog.FieldBackend, store.Type.String(),
			applog.FieldLedgerKey, l.Key(),
			"invoices", len(l.List()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully", applog.FieldOperation, applog.OpShutdown)
}
