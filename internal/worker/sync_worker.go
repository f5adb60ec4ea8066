package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fatura/internal/amqp"
	"fatura/internal/kv"
	"fatura/internal/ledger"
	"fatura/internal/sheets"
)

// SyncWorker re-exports the persisted ledger whenever it changes, and periodically
// because effective statuses move with the clock even when nothing is written.
type SyncWorker struct {
	store         kv.Store
	key           string
	exporter      sheets.Exporter
	currencyLabel string
	now           func() time.Time
	logger        *slog.Logger

	mu         sync.Mutex
	lastExport time.Time
	exports    int
	failures   int
}

// Stats is a point-in-time view of worker activity.
type Stats struct {
	LastExport time.Time
	Exports    int
	Failures   int
}

func NewSyncWorker(store kv.Store, key string, exporter sheets.Exporter, currencyLabel string, logger *slog.Logger) *SyncWorker {
	if key == "" {
		key = ledger.DefaultKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncWorker{
		store:         store,
		key:           key,
		exporter:      exporter,
		currencyLabel: currencyLabel,
		now:           time.Now,
		logger:        logger,
	}
}

// HandleLedgerChanged processes a change message from AMQP. Messages for other
// ledger keys are acknowledged without work.
func (w *SyncWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	if msg.Key != w.key {
		w.logger.DebugContext(ctx, "Ignoring change for another ledger", "ledger_key", msg.Key)
		return nil
	}

	w.logger.InfoContext(ctx, "Processing ledger change message",
		"operation", msg.Operation,
		"invoice_id", msg.InvoiceID,
		"timestamp", msg.Timestamp)

	return w.Sync(ctx)
}

// Sync reloads the ledger from the store and exports it.
func (w *SyncWorker) Sync(ctx context.Context) error {
	l, err := ledger.Open(ctx, w.store, ledger.WithKey(w.key), ledger.WithClock(w.now), ledger.WithLogger(w.logger))
	if err != nil {
		w.recordFailure()
		return fmt.Errorf("load ledger: %w", err)
	}

	snap := sheets.Snapshot{
		Invoices:      l.List(),
		Now:           w.now(),
		CurrencyLabel: w.currencyLabel,
	}
	if err := w.exporter.Export(ctx, snap); err != nil {
		w.recordFailure()
		return fmt.Errorf("export ledger: %w", err)
	}

	w.mu.Lock()
	w.lastExport = snap.Now
	w.exports++
	w.mu.Unlock()
	return nil
}

// StartupSyncCheck exports once at startup to recover from missed messages
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	if err := w.Sync(ctx); err != nil {
		return fmt.Errorf("startup sync: %w", err)
	}
	w.logger.InfoContext(ctx, "Startup sync completed", "ledger_key", w.key)
	return nil
}

// RunPeriodic exports every interval until ctx is cancelled. Failures are logged
// and retried on the next tick.
func (w *SyncWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return errors.New("sync interval must be positive")
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.InfoContext(ctx, "Periodic sync started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Sync(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic sync failed", "error", err)
			}
		}
	}
}

func (w *SyncWorker) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Stats{LastExport: w.lastExport, Exports: w.exports, Failures: w.failures}
}

func (w *SyncWorker) recordFailure() {
	w.mu.Lock()
	w.failures++
	w.mu.Unlock()
}
