package core

import "time"

// Summary holds the aggregate totals shown above the invoice table.
type Summary struct {
	// Receivable is the gross total of every invoice, paid ones included.
	Receivable Money
	// Collected sums invoices whose stored status is Paid.
	Collected Money
	// Overdue sums invoices that are not Paid and past due, whether the
	// overdue flag was set manually or derived from the date.
	Overdue Money
}

// Summarize computes the totals over the whole collection. Sums accumulate in
// cents; rounding to two decimals only happens when formatting.
func Summarize(invoices []Invoice, now time.Time) Summary {
	var s Summary
	for _, inv := range invoices {
		s.Receivable = s.Receivable.Add(inv.Amount)
		if inv.Status == Paid {
			s.Collected = s.Collected.Add(inv.Amount)
			continue
		}
		if IsPastDue(inv, now) {
			s.Overdue = s.Overdue.Add(inv.Amount)
		}
	}
	return s
}
