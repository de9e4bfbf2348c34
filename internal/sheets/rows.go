package sheets

import (
	"math"

	"github.com/Veraticus/spice-tally/internal/analysis"
)

// SummaryRows lays a summary out as spreadsheet rows.
// A nil summary produces a title row and a single "no data" row.
func SummaryRows(batch string, summary *analysis.Summary) [][]any {
	title := []any{"Transaction Summary", batch}
	if summary == nil {
		return [][]any{title, {}, {analysis.NoDataMessage}}
	}

	shares := summary.SortedCategories()
	values := make([][]any, 0, 16+len(shares))

	values = append(values,
		title,
		[]any{},
		[]any{"Totals"},
		[]any{"Total Credit", cell(summary.TotalCredit)},
		[]any{"Total Debit", cell(summary.TotalDebit)},
		[]any{"Net Balance", cell(summary.NetBalance)},
		[]any{"Transactions", summary.TransactionCount},
		[]any{"Average Transaction", cell(summary.AvgTransaction)},
		[]any{},
		[]any{"Highlights"},
	)

	if h := summary.HighestTransaction; h != nil {
		values = append(values, []any{"Highest Transaction", h.ID, cell(h.AmountValue()), h.To, h.Date})
	}

	values = append(values,
		[]any{"Frequent Contact", summary.FrequentContact},
		[]any{"All Above 100", summary.AllAbove100},
		[]any{"Has Large Transaction", summary.HasLargeTransaction},
		[]any{},
		[]any{"Category Breakdown"},
		[]any{"Category", "Amount", "Share"},
	)

	for _, share := range shares {
		values = append(values, []any{share.Category, cell(share.Amount), cell(share.Percent / 100)})
	}

	return values
}

// cell returns v for a numeric cell, or an empty string when v has no JSON form.
func cell(v float64) any {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return ""
	}
	return v
}
