package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fatura/internal/amqp"
	"fatura/internal/core"
	"fatura/internal/ledger"
	applog "fatura/internal/log"
)

// ChangePublisher announces that the persisted ledger changed.
type ChangePublisher interface {
	PublishLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error
}

// Row is an invoice as shown to a user at a given instant.
type Row struct {
	core.Invoice
	Effective core.Status
	PastDue   bool
	Actions   []core.Action
}

// Has reports whether action is offered for the row.
func (r Row) Has(action core.Action) bool {
	for _, a := range r.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// ListView is the filtered list together with the summary of the whole ledger.
type ListView struct {
	Rows    []Row
	Summary core.Summary
	Filter  core.Filter
	Total   int
	Now     time.Time
}

// InvoiceService orchestrates ledger operations and change notifications
type InvoiceService struct {
	ledger    *ledger.Ledger
	publisher ChangePublisher
	events    *applog.StructuredLogger
	logger    *slog.Logger
}

// NewInvoiceService wraps l. publisher may be nil, in which case no messages are sent.
func NewInvoiceService(l *ledger.Ledger, publisher ChangePublisher, logger *applog.Logger) *InvoiceService {
	if logger == nil {
		logger = applog.New(applog.Config{Component: applog.ComponentLedger})
	}
	return &InvoiceService{
		ledger:    l,
		publisher: publisher,
		events:    applog.NewStructuredLogger(logger),
		logger:    logger.Slog(),
	}
}

// Ledger exposes the underlying ledger.
func (s *InvoiceService) Ledger() *ledger.Ledger {
	return s.ledger
}

// CreateInvoice validates and stores a new invoice, then publishes a change message.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req ledger.AddRequest) (core.Invoice, error) {
	inv, err := s.ledger.Add(ctx, req)
	if err != nil && !ledger.IsPersistence(err) {
		return core.Invoice{}, err
	}

	s.events.LogInvoiceCreated(ctx, inv.ID, inv.CustomerName, inv.Amount.Cents, inv.DueDate.String(), string(inv.Status))
	if err != nil {
		return inv, err
	}
	s.publish(ctx, applog.OpCreate, inv.ID)
	return inv, nil
}

// MarkPaid records a payment.
func (s *InvoiceService) MarkPaid(ctx context.Context, id int64) error {
	return s.change(ctx, applog.OpMarkPaid, id, s.ledger.MarkPaid)
}

// MarkOverdue flags the invoice as overdue regardless of its due date.
func (s *InvoiceService) MarkOverdue(ctx context.Context, id int64) error {
	return s.change(ctx, applog.OpMarkOverdue, id, s.ledger.MarkOverdue)
}

// DeleteInvoice removes the invoice. Removing an unknown id reports false.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id int64) (bool, error) {
	removed, err := s.ledger.Remove(ctx, id)
	if !removed {
		return false, err
	}
	s.events.LogInvoiceChanged(ctx, applog.OpDelete, id)
	if err != nil {
		return true, err
	}
	s.publish(ctx, applog.OpDelete, id)
	return true, nil
}

func (s *InvoiceService) change(ctx context.Context, op string, id int64, apply func(context.Context, int64) error) error {
	err := apply(ctx, id)
	if errors.Is(err, ledger.ErrNotFound) {
		return err
	}
	s.events.LogInvoiceChanged(ctx, op, id)
	if err != nil {
		return err
	}
	s.publish(ctx, op, id)
	return nil
}

// publish never fails the caller: the ledger is already saved.
func (s *InvoiceService) publish(ctx context.Context, op string, id int64) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewLedgerChangedMessage(s.ledger.Key(), op, id)
	if err := s.publisher.PublishLedgerChanged(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ledger change",
			applog.FieldOperation, op,
			applog.FieldInvoiceID, id,
			applog.FieldError, err)
	}
}

// Get returns one invoice.
func (s *InvoiceService) Get(id int64) (core.Invoice, error) {
	inv, ok := s.ledger.Get(id)
	if !ok {
		return core.Invoice{}, fmt.Errorf("invoice %d: %w", id, ledger.ErrNotFound)
	}
	return inv, nil
}

// Summary aggregates the whole ledger.
func (s *InvoiceService) Summary() core.Summary {
	return s.ledger.Summary()
}

// List applies f and decorates each match with its effective status and actions.
// The summary always covers the whole ledger, not only the filtered rows.
func (s *InvoiceService) List(f core.Filter) ListView {
	now := s.ledger.Now()
	all := s.ledger.List()
	matches := core.FilterInvoices(all, f, now)

	return ListView{
		Rows:    BuildRows(matches, now),
		Summary: core.Summarize(all, now),
		Filter:  f,
		Total:   len(all),
		Now:     now,
	}
}

// BuildRows evaluates effective status and offered actions for each invoice at now.
func BuildRows(invoices []core.Invoice, now time.Time) []Row {
	rows := make([]Row, 0, len(invoices))
	for _, inv := range invoices {
		rows = append(rows, Row{
			Invoice:   inv,
			Effective: core.EffectiveStatus(inv, now),
			PastDue:   core.IsPastDue(inv, now),
			Actions:   core.AvailableActions(inv, now),
		})
	}
	return rows
}

// Close closes the publisher when it holds a connection.
func (s *InvoiceService) Close() error {
	if c, ok := s.publisher.(interface{ Close() error }); ok && c != nil {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
