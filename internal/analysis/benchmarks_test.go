package analysis

import (
	"fmt"
	"testing"

	"github.com/Veraticus/spice-tally/internal/model"
)

func generateRecords(count int) []*model.TransactionRecord {
	records := make([]*model.TransactionRecord, count)
	for i := 0; i < count; i++ {
		typ := model.TypeDebit
		if i%7 == 0 {
			typ = model.TypeCredit
		}
		records[i] = &model.TransactionRecord{
			ID:       fmt.Sprintf("txn-%d", i),
			Type:     typ,
			Amount:   model.Float(float64(i%500) + 0.5),
			To:       fmt.Sprintf("contact-%d", i%37),
			Category: fmt.Sprintf("category-%d", i%12),
		}
	}
	return records
}

func BenchmarkAnalyze(b *testing.B) {
	sizes := []int{10, 1000, 100000}
	for _, size := range sizes {
		records := generateRecords(size)
		b.Run(fmt.Sprintf("records=%d", size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = Analyze(records)
			}
		})
	}
}

func BenchmarkFormatSummary(b *testing.B) {
	formatter := NewCLIFormatter()
	summary := Analyze(generateRecords(1000))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = formatter.FormatSummary(summary)
	}
}
