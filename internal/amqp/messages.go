package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// LedgerChangedMessage tells consumers that the ledger stored under Key was rewritten.
// It carries no invoice data; consumers reload the ledger themselves.
type LedgerChangedMessage struct {
	Key       string    `json:"key"`
	Operation string    `json:"operation"`
	InvoiceID int64     `json:"invoice_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerChangedMessage creates a message stamped with the current time
func NewLedgerChangedMessage(key, operation string, invoiceID int64) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Key:       key,
		Operation: operation,
		InvoiceID: invoiceID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON parses a message and rejects one without a key
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Key == "" {
		return nil, fmt.Errorf("message without ledger key")
	}
	return &msg, nil
}
