package core

import "time"

// IsPastDue reports whether the due date lies strictly before now.
//
// The due date is the midnight UTC instant of the calendar date, so an invoice
// due today counts as past due for any now after 00:00 UTC of that day.
func IsPastDue(inv Invoice, now time.Time) bool {
	return inv.DueDate.Time.Before(now)
}

// EffectiveStatus derives the displayed status from the stored status and now.
// Paid and Overdue are returned as stored. Pending becomes Overdue once the due
// date has passed. The result must never be cached since now keeps moving.
func EffectiveStatus(inv Invoice, now time.Time) Status {
	if inv.Status == Pending && IsPastDue(inv, now) {
		return Overdue
	}
	return inv.Status
}
