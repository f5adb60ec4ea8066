package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"

	"fatura/internal/core"
)

// record is the persisted shape of one invoice. Field names match the blobs the
// browser version wrote, so an exported localStorage value loads unchanged.
type record struct {
	ID           int64       `json:"id"`
	CustomerName string      `json:"customerName"`
	Amount       core.Money  `json:"amount"`
	DueDate      core.Date   `json:"dueDate"`
	Status       core.Status `json:"status"`
}

// Encode serializes the collection as a JSON array, preserving order.
func Encode(invoices []core.Invoice) ([]byte, error) {
	records := make([]record, len(invoices))
	for i, inv := range invoices {
		records[i] = record{
			ID:           inv.ID,
			CustomerName: inv.CustomerName,
			Amount:       inv.Amount,
			DueDate:      inv.DueDate,
			Status:       inv.Status,
		}
	}
	return json.Marshal(records)
}

// Decode parses a blob written by Encode. An empty blob or JSON null yields an
// empty collection.
func Decode(data []byte) ([]core.Invoice, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []core.Invoice{}, nil
	}
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode ledger: %w", err)
	}
	out := make([]core.Invoice, len(records))
	for i, r := range records {
		inv := core.Invoice{
			ID:           r.ID,
			CustomerName: r.CustomerName,
			Amount:       r.Amount,
			DueDate:      r.DueDate,
			Status:       r.Status,
		}
		if err := inv.Validate(); err != nil {
			return nil, fmt.Errorf("decode ledger record %d (id %d): %w", i, r.ID, err)
		}
		out[i] = inv
	}
	return out, nil
}
