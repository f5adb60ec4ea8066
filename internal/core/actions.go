package core

import "time"

// Action is a per-row operation offered to the user.
type Action string

const (
	ActionMarkPaid    Action = "mark-paid"
	ActionMarkOverdue Action = "mark-overdue"
	ActionDelete      Action = "delete"
)

// AvailableActions lists what the user may do with an invoice right now.
// Status changes are only offered while the invoice is effectively Pending.
func AvailableActions(inv Invoice, now time.Time) []Action {
	if EffectiveStatus(inv, now) == Pending {
		return []Action{ActionMarkPaid, ActionMarkOverdue, ActionDelete}
	}
	return []Action{ActionDelete}
}
