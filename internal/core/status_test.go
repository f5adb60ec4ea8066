package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func inv(id int64, amount int64, due Date, st Status) Invoice {
	return Invoice{ID: id, CustomerName: "c", Amount: Money{Cents: amount}, DueDate: due, Status: st}
}

func TestEffectiveStatus(t *testing.T) {
	past := NewDate(2025, 6, 1)
	future := NewDate(2025, 7, 1)
	today := NewDate(2025, 6, 15)

	cases := []struct {
		name string
		in   Invoice
		want Status
	}{
		{"pending past due", inv(1, 1, past, Pending), Overdue},
		{"pending future", inv(1, 1, future, Pending), Pending},
		{"pending due today after midnight", inv(1, 1, today, Pending), Overdue},
		{"paid past due", inv(1, 1, past, Paid), Paid},
		{"paid future", inv(1, 1, future, Paid), Paid},
		{"manual overdue future", inv(1, 1, future, Overdue), Overdue},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EffectiveStatus(tc.in, testNow))
		})
	}

	// Exactly at midnight the due instant is not strictly before now
	midnight := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, Pending, EffectiveStatus(inv(1, 1, today, Pending), midnight))
}

func TestEffectiveStatusDoesNotMutate(t *testing.T) {
	i := inv(1, 1, NewDate(2020, 1, 1), Pending)
	_ = EffectiveStatus(i, testNow)
	assert.Equal(t, Pending, i.Status)
}

func TestSummarize(t *testing.T) {
	invoices := []Invoice{
		inv(1, 15000, NewDate(2020, 1, 1), Pending), // derived overdue
		inv(2, 2550, NewDate(2020, 1, 1), Paid),
		inv(3, 1000, NewDate(2030, 1, 1), Overdue), // manual, not yet past due
		inv(4, 725, NewDate(2024, 1, 1), Overdue),  // manual and past due
		inv(5, 300, NewDate(2030, 1, 1), Pending),
	}
	s := Summarize(invoices, testNow)
	assert.Equal(t, int64(15000+2550+1000+725+300), s.Receivable.Cents)
	assert.Equal(t, int64(2550), s.Collected.Cents)
	assert.Equal(t, int64(15000+725), s.Overdue.Cents)

	assert.Equal(t, Summary{}, Summarize(nil, testNow))
}

func TestSummarizeScenario(t *testing.T) {
	acme := inv(1, 15000, NewDate(2020, 1, 1), Pending)
	s := Summarize([]Invoice{acme}, testNow)
	assert.Equal(t, "150.00", s.Overdue.String())
	assert.Equal(t, int64(0), s.Collected.Cents)

	acme.Status = Paid
	s = Summarize([]Invoice{acme}, testNow)
	assert.Equal(t, "150.00", s.Collected.String())
	assert.Equal(t, int64(0), s.Overdue.Cents)
	assert.Equal(t, "150.00", s.Receivable.String())
}

func TestFilterInvoices(t *testing.T) {
	invoices := []Invoice{
		inv(1, 1, NewDate(2020, 1, 1), Pending),
		inv(2, 1, NewDate(2030, 1, 1), Pending),
		inv(3, 1, NewDate(2030, 1, 1), Overdue),
		inv(4, 1, NewDate(2020, 1, 1), Paid),
		inv(5, 1, NewDate(2019, 5, 5), Pending),
	}
	ids := func(in []Invoice) []int64 {
		out := make([]int64, 0, len(in))
		for _, i := range in {
			out = append(out, i.ID)
		}
		return out
	}

	cases := []struct {
		name string
		f    Filter
		want []int64
	}{
		{"zero value", Filter{}, []int64{1, 2, 3, 4, 5}},
		{"all", Filter{Status: AllStatuses}, []int64{1, 2, 3, 4, 5}},
		{"overdue effective", Filter{Status: StatusFilter(Overdue)}, []int64{1, 3, 5}},
		{"pending effective", Filter{Status: StatusFilter(Pending)}, []int64{2}},
		{"paid", Filter{Status: StatusFilter(Paid)}, []int64{4}},
		{"date only", Filter{DueDate: "2020-01-01"}, []int64{1, 4}},
		{"status and date", Filter{Status: StatusFilter(Overdue), DueDate: "2030-01-01"}, []int64{3}},
		{"no match", Filter{DueDate: "1999-01-01"}, []int64{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(FilterInvoices(invoices, tc.f, testNow)))
		})
	}
}

func TestFilterClear(t *testing.T) {
	f := Filter{Status: StatusFilter(Paid), DueDate: "2020-01-01"}
	assert.False(t, f.IsZero())
	f.Clear()
	assert.True(t, f.IsZero())
	assert.Equal(t, AllStatuses, f.Status)
}

func TestParseStatusFilter(t *testing.T) {
	for _, in := range []string{"", "all", "Tümü"} {
		sf, err := ParseStatusFilter(in)
		require.NoError(t, err)
		assert.Equal(t, AllStatuses, sf)
	}
	sf, err := ParseStatusFilter("overdue")
	require.NoError(t, err)
	assert.Equal(t, StatusFilter(Overdue), sf)

	_, err = ParseStatusFilter("draft")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestAvailableActions(t *testing.T) {
	assert.Equal(t,
		[]Action{ActionMarkPaid, ActionMarkOverdue, ActionDelete},
		AvailableActions(inv(1, 1, NewDate(2030, 1, 1), Pending), testNow))
	assert.Equal(t, []Action{ActionDelete}, AvailableActions(inv(1, 1, NewDate(2020, 1, 1), Pending), testNow))
	assert.Equal(t, []Action{ActionDelete}, AvailableActions(inv(1, 1, NewDate(2030, 1, 1), Paid), testNow))
}
