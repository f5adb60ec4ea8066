package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fatura/internal/core"
)

func TestBuildTable(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	snap := Snapshot{
		Now: now,
		Invoices: []core.Invoice{
			{ID: 1, CustomerName: "Acme", Amount: core.Money{Cents: 15050}, DueDate: core.NewDate(2025, 6, 1), Status: core.Pending},
			{ID: 2, CustomerName: "Globex", Amount: core.Money{Cents: 2000}, DueDate: core.NewDate(2025, 7, 1), Status: core.Paid},
			{ID: 3, CustomerName: "Initech", Amount: core.Money{Cents: 1000}, DueDate: core.NewDate(2025, 8, 1), Status: core.Pending},
		},
	}

	tbl := BuildTable(snap)
	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, []any{int64(1), "Acme", 150.5, "2025-06-01", "Gecikti"}, tbl.Rows[0])
	assert.Equal(t, "Ödendi", tbl.Rows[1][4])
	assert.Equal(t, "Bekliyor", tbl.Rows[2][4])

	assert.Equal(t, [][]any{
		{LabelReceivable, 185.5},
		{LabelCollected, 20.0},
		{LabelOverdue, 150.5},
	}, tbl.Summary)

	values := tbl.Values()
	require.Len(t, values, 1+3+1+3)
	assert.Equal(t, "Müşteri Adı", values[0][1])
	assert.Empty(t, values[4])
	assert.Equal(t, LabelOverdue, values[7][0])
}

func TestBuildTableEmpty(t *testing.T) {
	tbl := BuildTable(Snapshot{Now: time.Now()})
	assert.Empty(t, tbl.Rows)
	assert.Equal(t, 0.0, tbl.Summary[0][1])
	assert.Len(t, tbl.Values(), 5)
}
