package sheets

import (
	"fmt"

	"fatura/internal/core"
)

// Column headers, in sheet order.
var Header = []string{"ID", "Müşteri Adı", "Tutar", "Son Ödeme Tarihi", "Durum"}

// Summary row labels.
const (
	LabelReceivable = "Toplam Alacak"
	LabelCollected  = "Tahsil Edilen"
	LabelOverdue    = "Geciken"
)

// Table is a rendered snapshot. Cells are strings, int64 ids or float64 amounts so
// spreadsheet backends can keep numbers numeric.
type Table struct {
	Header  []string
	Rows    [][]any
	Summary [][]any
}

// BuildTable lists invoices with their effective status followed by the summary rows.
func BuildTable(snap Snapshot) Table {
	t := Table{Header: append([]string(nil), Header...)}
	for _, inv := range snap.Invoices {
		t.Rows = append(t.Rows, []any{
			inv.ID,
			inv.CustomerName,
			amount(inv.Amount),
			inv.DueDate.String(),
			string(core.EffectiveStatus(inv, snap.Now)),
		})
	}

	sum := core.Summarize(snap.Invoices, snap.Now)
	t.Summary = [][]any{
		{LabelReceivable, amount(sum.Receivable)},
		{LabelCollected, amount(sum.Collected)},
		{LabelOverdue, amount(sum.Overdue)},
	}
	return t
}

// Values flattens the table into rows for a range update: header, invoices, a blank
// separator, then the summary.
func (t Table) Values() [][]any {
	out := make([][]any, 0, len(t.Rows)+len(t.Summary)+2)
	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	out = append(out, header)
	out = append(out, t.Rows...)
	out = append(out, []any{})
	out = append(out, t.Summary...)
	return out
}

// amount converts cents to a float for spreadsheet cells. Two decimals are exact
// enough for display and sheet formulas.
func amount(m core.Money) float64 {
	return float64(m.Cents) / 100
}

// Caption describes the snapshot for logs.
func Caption(snap Snapshot) string {
	return fmt.Sprintf("%d invoices at %s", len(snap.Invoices), snap.Now.UTC().Format("2006-01-02 15:04"))
}
