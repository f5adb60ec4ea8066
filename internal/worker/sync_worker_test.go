package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fatura/internal/amqp"
	"fatura/internal/core"
	"fatura/internal/kv/memory"
	"fatura/internal/sheets"
)

var workerNow = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

type fakeExporter struct {
	mu    sync.Mutex
	snaps []sheets.Snapshot
	err   error
}

func (f *fakeExporter) Export(_ context.Context, snap sheets.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.snaps = append(f.snaps, snap)
	return nil
}

func (f *fakeExporter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.snaps)
}

const seededLedger = `[{"id":1,"customerName":"Acme","amount":150,"dueDate":"2025-06-01","status":"Bekliyor"}]`

func newTestWorker(exp *fakeExporter) *SyncWorker {
	store := memory.NewSeeded(map[string][]byte{"invoices": []byte(seededLedger)})
	w := NewSyncWorker(store, "", exp, "TL", nil)
	w.now = func() time.Time { return workerNow }
	return w
}

func TestSyncWorker_HandleLedgerChanged(t *testing.T) {
	exp := &fakeExporter{}
	w := newTestWorker(exp)

	err := w.HandleLedgerChanged(context.Background(), amqp.NewLedgerChangedMessage("invoices", "create", 1))
	require.NoError(t, err)

	require.Equal(t, 1, exp.count())
	snap := exp.snaps[0]
	require.Len(t, snap.Invoices, 1)
	assert.Equal(t, "Acme", snap.Invoices[0].CustomerName)
	assert.Equal(t, core.Overdue, core.EffectiveStatus(snap.Invoices[0], snap.Now))
	assert.Equal(t, "TL", snap.CurrencyLabel)

	stats := w.Stats()
	assert.Equal(t, 1, stats.Exports)
	assert.Equal(t, workerNow, stats.LastExport)
}

func TestSyncWorker_IgnoresOtherLedgers(t *testing.T) {
	exp := &fakeExporter{}
	w := newTestWorker(exp)

	require.NoError(t, w.HandleLedgerChanged(context.Background(), amqp.NewLedgerChangedMessage("other", "create", 1)))
	assert.Equal(t, 0, exp.count())
}

func TestSyncWorker_ExportFailureIsReturned(t *testing.T) {
	exp := &fakeExporter{err: errors.New("quota exceeded")}
	w := newTestWorker(exp)

	err := w.StartupSyncCheck(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Equal(t, 1, w.Stats().Failures)
}

func TestSyncWorker_EmptyStoreExportsEmptyLedger(t *testing.T) {
	exp := &fakeExporter{}
	w := NewSyncWorker(memory.New(), "invoices", exp, "TL", nil)

	require.NoError(t, w.Sync(context.Background()))
	require.Equal(t, 1, exp.count())
	assert.Empty(t, exp.snaps[0].Invoices)
}

func TestSyncWorker_RunPeriodic(t *testing.T) {
	exp := &fakeExporter{}
	w := newTestWorker(exp)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.RunPeriodic(ctx, 10*time.Millisecond) }()

	assert.Eventually(t, func() bool { return exp.count() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	assert.Error(t, w.RunPeriodic(context.Background(), 0))
}
