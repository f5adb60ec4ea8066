package core

import (
	"fmt"
	"strings"
	"time"
)

// AllStatuses is the status selector that disables status filtering.
const AllStatuses StatusFilter = "Tümü"

// StatusFilter selects invoices by effective status. The zero value behaves like AllStatuses.
type StatusFilter string

// Filter is the status/due-date selection applied to the invoice list.
type Filter struct {
	Status  StatusFilter
	DueDate string // exact YYYY-MM-DD match, empty disables
}

// ParseStatusFilter accepts "", "all", the AllStatuses label or any ParseStatus input.
func ParseStatusFilter(s string) (StatusFilter, error) {
	trimmed := strings.TrimSpace(s)
	switch strings.ToLower(trimmed) {
	case "", "all", strings.ToLower(string(AllStatuses)):
		return AllStatuses, nil
	}
	st, err := ParseStatus(trimmed)
	if err != nil {
		return "", fmt.Errorf("status filter: %w", err)
	}
	return StatusFilter(st), nil
}

func (sf StatusFilter) all() bool {
	return sf == "" || sf == AllStatuses
}

// IsZero reports whether the filter lets every invoice through.
func (f Filter) IsZero() bool {
	return f.Status.all() && f.DueDate == ""
}

// Clear resets the filter to show everything.
func (f *Filter) Clear() {
	f.Status = AllStatuses
	f.DueDate = ""
}

// Match reports whether inv passes both the status and the due-date selector.
func (f Filter) Match(inv Invoice, now time.Time) bool {
	if !f.Status.all() && Status(f.Status) != EffectiveStatus(inv, now) {
		return false
	}
	if f.DueDate != "" && inv.DueDate.String() != f.DueDate {
		return false
	}
	return true
}

// FilterInvoices returns the matching invoices in ledger order.
func FilterInvoices(invoices []Invoice, f Filter, now time.Time) []Invoice {
	out := make([]Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if f.Match(inv, now) {
			out = append(out, inv)
		}
	}
	return out
}
