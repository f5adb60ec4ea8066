package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"fatura/internal/backend"
	"fatura/internal/cli"
	"fatura/internal/config"
	applog "fatura/internal/log"
	"fatura/internal/services"
)

var version = "1.0.0"

// session is the opened ledger shared by one command invocation.
type session struct {
	cfg    *config.Config
	svc    *services.InvoiceService
	logger *applog.Logger
	store  *backend.BackendResult
}

func (s *session) Close() error {
	return errors.Join(s.svc.Close(), s.store.Close())
}

type opener func(ctx context.Context) (*session, error)

// openFromEnv opens the ledger configured by the environment and .env.
func openFromEnv(ctx context.Context) (*session, error) {
	if err := cli.LoadEnvFile(); err != nil {
		return nil, err
	}
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return nil, err
	}

	// stdout carries command output
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: applog.ComponentCLI,
		Output:    os.Stderr,
	})

	store, err := cli.OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	l, err := cli.OpenLedger(ctx, cfg, store.Store, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	var changes services.ChangePublisher
	publisher, err := cli.NewPublisher(cfg, logger)
	if err != nil {
		logger.Warn("AMQP unavailable, change will not be synced", "error", err)
	} else if publisher != nil {
		changes = publisher
	}

	return &session{
		cfg:    cfg,
		svc:    services.NewInvoiceService(l, changes, logger.WithComponent(applog.ComponentLedger)),
		logger: logger,
		store:  store,
	}, nil
}

type rootOptions struct {
	open opener
}

func newRootCmd(open opener) *cobra.Command {
	opts := &rootOptions{open: open}

	rootCmd := &cobra.Command{
		Use:   "faturactl",
		Short: "Manage the invoice ledger",
		Long: `faturactl adds, lists and updates invoices in the ledger used by the
fatura web server. Storage is selected with STORAGE_BACKEND and LEDGER_KEY,
read from the environment or a .env file in the working directory.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newAddCmd(opts),
		newListCmd(opts),
		newStatusCmd(opts, "pay", "Mark an invoice as paid", markPaid),
		newStatusCmd(opts, "overdue", "Mark an invoice as overdue", markOverdue),
		newRemoveCmd(opts),
		newSummaryCmd(opts),
		newExportCmd(opts),
	)
	return rootCmd
}

// withSession opens the ledger for the duration of run.
func (o *rootOptions) withSession(run func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := o.open(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()
		return run(cmd, args, s)
	}
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid invoice id %q", arg)
	}
	return id, nil
}
