package sheets

import (
	"testing"

	"github.com/Veraticus/spice-tally/internal/analysis"
	"github.com/Veraticus/spice-tally/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findRow(rows [][]any, label string) []any {
	for _, row := range rows {
		if len(row) > 0 && row[0] == label {
			return row
		}
	}
	return nil
}

func TestSummaryRows(t *testing.T) {
	summary := analysis.Analyze([]*model.TransactionRecord{
		{ID: "T1", Type: model.TypeCredit, Amount: model.Float(5000), To: "Salary", Category: "income", Date: "2025-01-01"},
		{ID: "T2", Type: model.TypeDebit, Amount: model.Float(200), To: "Swiggy", Category: "food", Date: "2025-01-02"},
		{ID: "T3", Type: model.TypeDebit, Amount: model.Float(100), To: "Swiggy", Category: "food", Date: "2025-01-03"},
	})
	require.NotNil(t, summary)

	rows := SummaryRows("january", summary)

	assert.Equal(t, []any{"Transaction Summary", "january"}, rows[0])
	assert.Equal(t, []any{"Total Credit", 5000.0}, findRow(rows, "Total Credit"))
	assert.Equal(t, []any{"Total Debit", 300.0}, findRow(rows, "Total Debit"))
	assert.Equal(t, []any{"Net Balance", 4700.0}, findRow(rows, "Net Balance"))
	assert.Equal(t, []any{"Transactions", 3}, findRow(rows, "Transactions"))
	assert.Equal(t, []any{"Average Transaction", 1767.0}, findRow(rows, "Average Transaction"))
	assert.Equal(t, []any{"Highest Transaction", "T1", 5000.0, "Salary", "2025-01-01"}, findRow(rows, "Highest Transaction"))
	assert.Equal(t, []any{"Frequent Contact", "Swiggy"}, findRow(rows, "Frequent Contact"))
	assert.Equal(t, []any{"All Above 100", false}, findRow(rows, "All Above 100"))
	assert.Equal(t, []any{"Has Large Transaction", true}, findRow(rows, "Has Large Transaction"))

	income := findRow(rows, "income")
	require.Len(t, income, 3)
	assert.InDelta(t, 5000, income[1], 0)
	assert.InDelta(t, 5000.0/5300.0, income[2], 1e-9)

	// Categories follow the header, largest first.
	header := -1
	for i, row := range rows {
		if len(row) > 0 && row[0] == "Category" {
			header = i
		}
	}
	require.NotEqual(t, -1, header)
	require.Len(t, rows, header+3)
	assert.Equal(t, "income", rows[header+1][0])
	assert.Equal(t, "food", rows[header+2][0])
}

func TestSummaryRows_NilSummary(t *testing.T) {
	rows := SummaryRows("empty", nil)
	require.Len(t, rows, 3)
	assert.Equal(t, []any{analysis.NoDataMessage}, rows[2])
}

func TestSummaryRows_OverflowingTotals(t *testing.T) {
	summary := analysis.Analyze([]*model.TransactionRecord{
		{ID: "T1", Type: model.TypeCredit, Amount: model.Float(1e308), To: "A", Category: "big"},
		{ID: "T2", Type: model.TypeCredit, Amount: model.Float(1e308), To: "A", Category: "big"},
	})
	require.NotNil(t, summary)

	rows := SummaryRows("huge", summary)

	assert.Equal(t, []any{"Total Credit", ""}, findRow(rows, "Total Credit"))
	assert.Equal(t, []any{"Average Transaction", ""}, findRow(rows, "Average Transaction"))
	assert.Equal(t, []any{"Highest Transaction", "T1", 1e308, "A", ""}, findRow(rows, "Highest Transaction"))
	assert.Equal(t, []any{"big", "", ""}, findRow(rows, "big"))
}
