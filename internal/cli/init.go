// Package cli provides common CLI initialization utilities.
// This package consolidates the start-up steps shared by cmd/fatura,
// cmd/fatura-worker and cmd/faturactl.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fatura/internal/amqp"
	"fatura/internal/backend"
	"fatura/internal/config"
	"fatura/internal/kv"
	"fatura/internal/ledger"
	applog "fatura/internal/log"
	"fatura/internal/services"
)

// SetupLogger builds the process logger from cfg and installs it as the
// slog default.
func SetupLogger(cfg *config.Config, component string) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: component,
		Output:    os.Stdout,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads a .env file for local development. A missing file is not
// an error; variables already present in the environment win.
func LoadEnvFile(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// LoadAndValidateConfig reads the configuration from the environment.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenStore creates the key-value store selected by STORAGE_BACKEND.
// Callers must Close the result.
func OpenStore(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Slog()).CreateStore(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", bcfg.Type, err)
	}
	logger.InfoContext(ctx, "Storage backend ready",
		applog.FieldBackend, res.Type.String(),
		applog.FieldLedgerKey, cfg.LedgerKey)
	return res, nil
}

// OpenLedger loads the ledger stored under cfg.LedgerKey.
func OpenLedger(ctx context.Context, cfg *config.Config, store kv.Store, logger *applog.Logger) (*ledger.Ledger, error) {
	return ledger.Open(ctx, store,
		ledger.WithKey(cfg.LedgerKey),
		ledger.WithLogger(logger.WithComponent(applog.ComponentLedger).Slog()))
}

// Publisher is a ledger change publisher that must be closed on shutdown.
type Publisher interface {
	services.ChangePublisher
	Close() error
}

// NewPublisher connects to the broker when AMQP_URL is set. It returns a nil
// Publisher, not a typed nil, when messaging is disabled.
func NewPublisher(cfg *config.Config, logger *applog.Logger) (Publisher, error) {
	if cfg.AMQPURL == "" {
		return nil, nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return nil, fmt.Errorf("connect to AMQP: %w", err)
	}
	return client.WithLogger(logger.WithComponent(applog.ComponentAMQP).Slog()), nil
}

// ReadyCheck returns a readiness probe for store. Stores that cannot be
// pinged are always ready.
func ReadyCheck(store kv.Store) func(context.Context) error {
	pinger, ok := store.(interface{ Ping(context.Context) error })
	if !ok {
		return func(context.Context) error { return nil }
	}
	return pinger.Ping
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. The
// returned stop function releases the signal handler.
func GracefulShutdown(parent context.Context, logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received",
				"signal", sig.String(),
				applog.FieldOperation, applog.OpShutdown)
			cancel(fmt.Errorf("received %s", sig))
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel(context.Canceled)
	}
}
