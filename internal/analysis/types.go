package analysis

import (
	"encoding/json"
	"math"

	"github.com/Veraticus/spice-tally/internal/model"
)

// Thresholds used by the summary flags.
const (
	// LargeTransactionThreshold is the amount at or above which a transaction counts as large.
	LargeTransactionThreshold = 5000.0
	// SmallTransactionFloor is the amount every transaction must exceed for AllAbove100.
	SmallTransactionFloor = 100.0
)

// Summary contains the aggregate statistics for a set of valid transaction records.
type Summary struct {
	HighestTransaction  *model.TransactionRecord `json:"highestTransaction"`
	CategoryBreakdown   map[string]float64       `json:"categoryBreakdown"`
	FrequentContact     string                   `json:"frequentContact"`
	CategoryOrder       []string                 `json:"-"` // Breakdown keys in first-appearance order
	TotalCredit         float64                  `json:"totalCredit"`
	TotalDebit          float64                  `json:"totalDebit"`
	NetBalance          float64                  `json:"netBalance"`
	TransactionCount    int                      `json:"transactionCount"`
	AvgTransaction      float64                  `json:"avgTransaction"` // Whole number unless infinite
	AllAbove100         bool                     `json:"allAbove100"`
	HasLargeTransaction bool                     `json:"hasLargeTransaction"`
}

// MarshalJSON encodes the summary with the documented field names. Sums of
// very large amounts can overflow to infinity; non-finite numbers have no JSON
// form and are written as null.
func (s Summary) MarshalJSON() ([]byte, error) {
	breakdown := make(map[string]jsonNumber, len(s.CategoryBreakdown))
	for category, amount := range s.CategoryBreakdown {
		breakdown[category] = jsonNumber(amount)
	}

	return json.Marshal(struct {
		HighestTransaction  *model.TransactionRecord `json:"highestTransaction"`
		CategoryBreakdown   map[string]jsonNumber    `json:"categoryBreakdown"`
		FrequentContact     string                   `json:"frequentContact"`
		TotalCredit         jsonNumber               `json:"totalCredit"`
		TotalDebit          jsonNumber               `json:"totalDebit"`
		NetBalance          jsonNumber               `json:"netBalance"`
		TransactionCount    int                      `json:"transactionCount"`
		AvgTransaction      jsonNumber               `json:"avgTransaction"`
		AllAbove100         bool                     `json:"allAbove100"`
		HasLargeTransaction bool                     `json:"hasLargeTransaction"`
	}{
		HighestTransaction:  s.HighestTransaction,
		CategoryBreakdown:   breakdown,
		FrequentContact:     s.FrequentContact,
		TotalCredit:         jsonNumber(s.TotalCredit),
		TotalDebit:          jsonNumber(s.TotalDebit),
		NetBalance:          jsonNumber(s.NetBalance),
		TransactionCount:    s.TransactionCount,
		AvgTransaction:      jsonNumber(s.AvgTransaction),
		AllAbove100:         s.AllAbove100,
		HasLargeTransaction: s.HasLargeTransaction,
	})
}

// jsonNumber is a float64 that encodes NaN and infinities as null.
type jsonNumber float64

func (n jsonNumber) MarshalJSON() ([]byte, error) {
	v := float64(n)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// TotalVolume returns the unsigned sum of every valid amount.
func (s *Summary) TotalVolume() float64 {
	if s == nil {
		return 0
	}
	return s.TotalCredit + s.TotalDebit
}

// CategoryShare is one line of the category breakdown, in display order.
type CategoryShare struct {
	Category string
	Amount   float64
	Percent  float64
}

// SortedCategories returns the breakdown ordered by amount, largest first.
// Equal amounts keep their first-appearance order.
func (s *Summary) SortedCategories() []CategoryShare {
	if s == nil || len(s.CategoryBreakdown) == 0 {
		return nil
	}

	order := s.CategoryOrder
	if len(order) != len(s.CategoryBreakdown) {
		order = sortedKeys(s.CategoryBreakdown)
	}

	volume := s.TotalVolume()
	shares := make([]CategoryShare, 0, len(order))
	for _, category := range order {
		amount := s.CategoryBreakdown[category]
		share := CategoryShare{Category: category, Amount: amount}
		if volume > 0 {
			share.Percent = amount / volume * 100
		}
		shares = append(shares, share)
	}

	sortSharesStable(shares)
	return shares
}
