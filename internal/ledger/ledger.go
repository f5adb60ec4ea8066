// Package ledger owns the invoice collection: it validates new invoices, applies
// status changes and deletions, and saves the whole collection to a key-value
// store after every change.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"fatura/internal/core"
	"fatura/internal/kv"
)

// DefaultKey is the store key the collection lives under.
const DefaultKey = "invoices"

// AddRequest carries the raw add-invoice form fields.
type AddRequest struct {
	CustomerName string
	Amount       string
	DueDate      string
	Status       string // optional, empty means Pending
}

// Ledger is the in-memory invoice collection backed by a kv.Store.
//
// Every mutation is applied to memory first and then the full collection is
// saved once. A failed save leaves the mutation in place and returns a
// *PersistenceError.
type Ledger struct {
	mu       sync.Mutex
	store    kv.Store
	key      string
	now      func() time.Time
	logger   *slog.Logger
	ids      *idGenerator
	invoices []core.Invoice
}

type Option func(*Ledger)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(l *Ledger) {
		if strings.TrimSpace(key) != "" {
			l.key = key
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Open loads the collection from store, or starts empty when the key is absent.
func Open(ctx context.Context, store kv.Store, opts ...Option) (*Ledger, error) {
	if store == nil {
		return nil, errors.New("ledger: nil store")
	}
	l := &Ledger{
		store:  store,
		key:    DefaultKey,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.ids = &idGenerator{now: l.now}

	data, err := store.Load(ctx, l.key)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		l.invoices = []core.Invoice{}
		return l, nil
	case err != nil:
		return nil, fmt.Errorf("load ledger %q: %w", l.key, err)
	}

	invoices, err := Decode(data)
	if err != nil {
		return nil, err
	}
	l.invoices = l.dedupeIDs(ctx, invoices)
	l.logger.InfoContext(ctx, "Ledger loaded", "key", l.key, "count", len(l.invoices))
	return l, nil
}

// dedupeIDs assigns fresh ids to records that repeat an earlier id. Blobs
// written with plain millisecond ids can contain such repeats.
func (l *Ledger) dedupeIDs(ctx context.Context, invoices []core.Invoice) []core.Invoice {
	seen := make(map[int64]struct{}, len(invoices))
	for _, inv := range invoices {
		l.ids.observe(inv.ID)
	}
	for i := range invoices {
		if _, dup := seen[invoices[i].ID]; dup {
			old := invoices[i].ID
			invoices[i].ID = l.ids.next()
			l.logger.WarnContext(ctx, "Duplicate invoice id reassigned", "old_id", old, "new_id", invoices[i].ID)
		}
		seen[invoices[i].ID] = struct{}{}
	}
	return invoices
}

// Now returns the ledger clock's current instant.
func (l *Ledger) Now() time.Time {
	return l.now()
}

// Key returns the store key the ledger persists under.
func (l *Ledger) Key() string {
	return l.key
}

// Add validates the request, appends a new invoice and persists.
func (l *Ledger) Add(ctx context.Context, req AddRequest) (core.Invoice, error) {
	inv, err := buildInvoice(req)
	if err != nil {
		return core.Invoice{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	inv.ID = l.ids.next()
	l.invoices = append(l.invoices, inv)
	return inv, l.persist(ctx, "add")
}

func buildInvoice(req AddRequest) (core.Invoice, error) {
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return core.Invoice{}, &ValidationError{Field: "customerName", Err: core.ErrEmptyCustomer}
	}
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Invoice{}, &ValidationError{Field: "amount", Err: err}
	}
	due, err := core.ParseDate(req.DueDate)
	if err != nil {
		return core.Invoice{}, &ValidationError{Field: "dueDate", Err: err}
	}
	status := core.Pending
	if strings.TrimSpace(req.Status) != "" {
		if status, err = core.ParseStatus(req.Status); err != nil {
			return core.Invoice{}, &ValidationError{Field: "status", Err: err}
		}
	}
	inv := core.Invoice{
		CustomerName: name,
		Amount:       core.Money{Cents: cents},
		DueDate:      due,
		Status:       status,
	}
	if err := inv.Validate(); err != nil {
		return core.Invoice{}, &ValidationError{Field: "invoice", Err: err}
	}
	return inv, nil
}

// MarkPaid sets the stored status to Paid.
func (l *Ledger) MarkPaid(ctx context.Context, id int64) error {
	return l.setStatus(ctx, id, core.Paid, "mark_paid")
}

// MarkOverdue sets the stored status to Overdue regardless of the due date.
// The override sticks until another status change.
func (l *Ledger) MarkOverdue(ctx context.Context, id int64) error {
	return l.setStatus(ctx, id, core.Overdue, "mark_overdue")
}

func (l *Ledger) setStatus(ctx context.Context, id int64, status core.Status, op string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%s %d: %w", op, id, ErrNotFound)
	}
	l.invoices[idx].Status = status
	return l.persist(ctx, op)
}

// Remove deletes the invoice with id and persists the collection. An unknown
// id leaves the collection unchanged and reports false, but is still saved.
func (l *Ledger) Remove(ctx context.Context, id int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOf(id)
	if idx >= 0 {
		l.invoices = append(l.invoices[:idx:idx], l.invoices[idx+1:]...)
	}
	return idx >= 0, l.persist(ctx, "remove")
}

// List returns a copy of the collection in insertion order.
func (l *Ledger) List() []core.Invoice {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Invoice(nil), l.invoices...)
}

// Get returns the invoice with id.
func (l *Ledger) Get(id int64) (core.Invoice, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if idx := l.indexOf(id); idx >= 0 {
		return l.invoices[idx], true
	}
	return core.Invoice{}, false
}

// Summary aggregates the whole collection against the current time.
func (l *Ledger) Summary() core.Summary {
	return core.Summarize(l.List(), l.now())
}

// Filter returns the invoices matching f against the current time.
func (l *Ledger) Filter(f core.Filter) []core.Invoice {
	return core.FilterInvoices(l.List(), f, l.now())
}

func (l *Ledger) indexOf(id int64) int {
	for i := range l.invoices {
		if l.invoices[i].ID == id {
			return i
		}
	}
	return -1
}

// persist saves the full collection. Callers hold l.mu.
func (l *Ledger) persist(ctx context.Context, op string) error {
	data, err := Encode(l.invoices)
	if err == nil {
		err = l.store.Save(ctx, l.key, data)
	}
	if err != nil {
		l.logger.ErrorContext(ctx, "Ledger save failed", "operation", op, "key", l.key, "error", err)
		return &PersistenceError{Op: op, Err: err}
	}
	l.logger.DebugContext(ctx, "Ledger saved", "operation", op, "key", l.key, "count", len(l.invoices), "bytes", len(data))
	return nil
}
