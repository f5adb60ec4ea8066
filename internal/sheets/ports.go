// Package sheets renders the ledger as a spreadsheet table and defines the
// exporters that publish it.
package sheets

import (
	"context"
	"time"

	"fatura/internal/core"
)

// Snapshot is the ledger content to export, evaluated at Now.
type Snapshot struct {
	Invoices      []core.Invoice
	Now           time.Time
	CurrencyLabel string
}

// Ports for outbound adapters.
type (
	// Exporter replaces the exported sheet with the snapshot.
	Exporter interface {
		Export(ctx context.Context, snap Snapshot) error
	}
)
