// Package analysis aggregates transaction records into summary statistics and
// renders the result for the terminal.
package analysis

import (
	"math"
	"sort"

	"github.com/Veraticus/spice-tally/internal/model"
)

// Analyze reduces records to a Summary.
//
// Records that are nil or fail model.TransactionRecord.Valid are skipped without
// error. Analyze returns nil when records is empty or when no record is valid. The input
// slice and its records are never modified.
func Analyze(records []*model.TransactionRecord) *Summary {
	if len(records) == 0 {
		return nil
	}

	valid := make([]*model.TransactionRecord, 0, len(records))
	for _, r := range records {
		if r.Valid() {
			valid = append(valid, r)
		}
	}
	if len(valid) == 0 {
		return nil
	}

	s := &Summary{
		CategoryBreakdown:   make(map[string]float64),
		TransactionCount:    len(valid),
		AllAbove100:         true,
		HasLargeTransaction: false,
	}

	var highest *model.TransactionRecord
	contactCounts := make(map[string]int)
	var contactOrder []string

	for _, r := range valid {
		amount := *r.Amount

		switch r.Type {
		case model.TypeCredit:
			s.TotalCredit += amount
		case model.TypeDebit:
			s.TotalDebit += amount
		}

		// Strictly greater only, so the first maximal record wins.
		if highest == nil || amount > *highest.Amount {
			highest = r
		}

		if _, seen := s.CategoryBreakdown[r.Category]; !seen {
			s.CategoryOrder = append(s.CategoryOrder, r.Category)
		}
		s.CategoryBreakdown[r.Category] += amount

		if _, seen := contactCounts[r.To]; !seen {
			contactOrder = append(contactOrder, r.To)
		}
		contactCounts[r.To]++

		if amount <= SmallTransactionFloor {
			s.AllAbove100 = false
		}
		if amount >= LargeTransactionThreshold {
			s.HasLargeTransaction = true
		}
	}

	s.NetBalance = s.TotalCredit - s.TotalDebit
	s.AvgTransaction = roundHalfUp(s.TotalVolume() / float64(s.TransactionCount))
	s.HighestTransaction = highest.Clone()
	s.FrequentContact = mostFrequent(contactOrder, contactCounts, valid[0].To)

	return s
}

// mostFrequent picks the label with the highest count. Labels are scanned in
// first-appearance order and only a strictly greater count replaces the current
// best, so the earliest label wins a tie.
func mostFrequent(order []string, counts map[string]int, initial string) string {
	best, bestCount := initial, 0
	for _, label := range order {
		if counts[label] > bestCount {
			best, bestCount = label, counts[label]
		}
	}
	return best
}

// roundHalfUp rounds to the nearest integer with .5 going toward positive
// infinity. Infinities and NaN are returned unchanged. Adding 0.5 before
// flooring is avoided because the addition itself can round.
func roundHalfUp(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	f := math.Floor(v)
	if v-f >= 0.5 {
		return f + 1
	}
	return f
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortSharesStable(shares []CategoryShare) {
	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Amount > shares[j].Amount
	})
}
