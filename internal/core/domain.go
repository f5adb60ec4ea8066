package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Stored statuses. The labels are the user-facing values and are persisted as-is.
const (
	Pending Status = "Bekliyor"
	Paid    Status = "Ödendi"
	Overdue Status = "Gecikti"
)

// DateLayout is the ISO calendar date form used for storage, filtering and display.
const DateLayout = "2006-01-02"

type (
	Status string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Invoice struct {
		ID           int64
		CustomerName string
		Amount       Money
		DueDate      Date
		Status       Status // stored status; see EffectiveStatus for the displayed one
	}
)

var (
	ErrEmptyCustomer = errors.New("empty customer name")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid due date")
	ErrInvalidStatus = errors.New("invalid status")
)

// NewDate creates a new Date from year, month, day at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string. Out-of-range days such as 2025-02-30 are rejected.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String returns the date in DateLayout, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseStatus accepts the stored labels and, case-insensitively, their English names.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case strings.ToLower(string(Pending)), "pending":
		return Pending, nil
	case strings.ToLower(string(Paid)), "paid":
		return Paid, nil
	case strings.ToLower(string(Overdue)), "overdue":
		return Overdue, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func (s Status) Valid() bool {
	switch s {
	case Pending, Paid, Overdue:
		return true
	}
	return false
}

// English returns the English name of the status, used for CSS classes and API keys.
func (s Status) English() string {
	switch s {
	case Pending:
		return "pending"
	case Paid:
		return "paid"
	case Overdue:
		return "overdue"
	}
	return "unknown"
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (inv Invoice) Validate() error {
	if strings.TrimSpace(inv.CustomerName) == "" {
		return ErrEmptyCustomer
	}
	if err := inv.Amount.Validate(); err != nil {
		return err
	}
	if err := inv.DueDate.Validate(); err != nil {
		return err
	}
	if !inv.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}
