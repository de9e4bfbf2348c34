package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// NoDataMessage is shown in place of a report when nothing could be analyzed.
const NoDataMessage = "No transactions to analyze"

const (
	categoryNameWidth = 20
	categoryLimit     = 10
	barWidth          = 20
)

// CLIFormatter renders a Summary for terminal display.
type CLIFormatter struct {
	styles *Styles
}

// NewCLIFormatter creates a new CLI formatter with default styles.
func NewCLIFormatter() *CLIFormatter {
	return &CLIFormatter{
		styles: NewStyles(),
	}
}

// FormatSummary creates the full terminal report for a summary.
func (f *CLIFormatter) FormatSummary(summary *Summary) string {
	if summary == nil {
		return f.styles.Warning.Render(NoDataMessage)
	}

	sections := []string{
		f.formatHeader(summary),
		f.formatTotals(summary),
		f.formatHighlights(summary),
	}

	if len(summary.CategoryBreakdown) > 0 {
		sections = append(sections, f.formatCategoryBreakdown(summary))
	}

	return strings.Join(sections, "\n\n")
}

// FormatJSON encodes a summary as indented JSON. A nil summary encodes as null.
func FormatJSON(summary *Summary) ([]byte, error) {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode summary: %w", err)
	}
	return data, nil
}

func (f *CLIFormatter) formatHeader(summary *Summary) string {
	title := f.styles.Title.Render("📊 Transaction Summary")
	count := f.styles.Subtitle.Render(fmt.Sprintf("%d transactions analyzed", summary.TransactionCount))
	return fmt.Sprintf("%s\n%s", title, count)
}

func (f *CLIFormatter) formatTotals(summary *Summary) string {
	netStyle := f.styles.Net
	if summary.NetBalance < 0 {
		netStyle = f.styles.Debit
	}

	lines := []string{
		fmt.Sprintf("Credits:  %s", f.styles.Credit.Render(formatAmount(summary.TotalCredit))),
		fmt.Sprintf("Debits:   %s", f.styles.Debit.Render(formatAmount(summary.TotalDebit))),
		fmt.Sprintf("Net:      %s", netStyle.Render(formatAmount(summary.NetBalance))),
		fmt.Sprintf("Average:  %s", f.styles.Normal.Render(formatAmount(summary.AvgTransaction))),
	}

	return f.styles.Box.Render(strings.Join(lines, "\n"))
}

func (f *CLIFormatter) formatHighlights(summary *Summary) string {
	title := f.styles.Subtitle.Render("Highlights:")

	var lines []string
	if h := summary.HighestTransaction; h != nil {
		label := h.ID
		if label == "" {
			label = "(no id)"
		}
		lines = append(lines, fmt.Sprintf("🏆 Highest: %s %s to %s",
			label, formatAmount(h.AmountValue()), displayLabel(h.To)))
	}
	lines = append(lines, fmt.Sprintf("👥 Most frequent contact: %s", displayLabel(summary.FrequentContact)))

	if summary.HasLargeTransaction {
		lines = append(lines, f.styles.Flag.Render(fmt.Sprintf("⚠️  Contains a transaction of %s or more", formatAmount(LargeTransactionThreshold))))
	}
	if summary.AllAbove100 {
		lines = append(lines, f.styles.Success.Render(fmt.Sprintf("✓ Every transaction is above %s", formatAmount(SmallTransactionFloor))))
	}

	return title + "\n" + strings.Join(lines, "\n")
}

func (f *CLIFormatter) formatCategoryBreakdown(summary *Summary) string {
	title := f.styles.Subtitle.Render("Category Breakdown:")
	shares := summary.SortedCategories()

	limit := categoryLimit
	if len(shares) < limit {
		limit = len(shares)
	}

	rows := make([]string, 0, limit+1)
	for _, share := range shares[:limit] {
		name := displayLabel(share.Category)
		if lipgloss.Width(name) > categoryNameWidth-1 {
			name = truncate(name, categoryNameWidth-4) + "..."
		}
		rows = append(rows, fmt.Sprintf("%-*s %s %12s %5.1f%%",
			categoryNameWidth, name,
			f.renderBar(share.Percent),
			formatAmount(share.Amount),
			share.Percent))
	}

	if len(shares) > limit {
		rows = append(rows, f.styles.Subtle.Render(fmt.Sprintf("... and %d more categories", len(shares)-limit)))
	}

	return title + "\n" + f.styles.CategoryBox.Render(strings.Join(rows, "\n"))
}

func (f *CLIFormatter) renderBar(percent float64) string {
	filled := 0
	switch {
	case percent >= 100:
		filled = barWidth
	case percent > 0:
		filled = int(percent / 100 * barWidth)
	}
	return f.styles.BarFill.Render(strings.Repeat("█", filled)) +
		f.styles.BarEmpty.Render(strings.Repeat("░", barWidth-filled))
}

// formatAmount prints whole amounts without decimals and everything else with two.
func formatAmount(v float64) string {
	if math.Abs(v) < 1e15 && v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

func displayLabel(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
