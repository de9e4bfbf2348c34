package analysis

import (
	"github.com/Veraticus/spice-tally/internal/cli"
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all styling definitions for summary formatting.
type Styles struct {
	// Base styles from CLI package
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
	Subtle   lipgloss.Style
	Normal   lipgloss.Style

	// Summary-specific styles
	Box         lipgloss.Style
	Credit      lipgloss.Style
	Debit       lipgloss.Style
	Net         lipgloss.Style
	CategoryBox lipgloss.Style
	BarFill     lipgloss.Style
	BarEmpty    lipgloss.Style
	Flag        lipgloss.Style
}

// NewStyles creates a new Styles instance with default styling.
func NewStyles() *Styles {
	s := &Styles{
		Title:    cli.TitleStyle,
		Subtitle: cli.SubtitleStyle,
		Success:  cli.SuccessStyle,
		Warning:  cli.WarningStyle,
		Error:    cli.ErrorStyle,
		Info:     cli.InfoStyle,
		Subtle:   cli.SubtleStyle,
		Normal:   lipgloss.NewStyle(),
	}

	s.Box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(cli.SubtleColor).
		Padding(0, 1)

	s.Credit = lipgloss.NewStyle().
		Bold(true).
		Foreground(cli.SuccessColor)

	s.Debit = lipgloss.NewStyle().
		Bold(true).
		Foreground(cli.ErrorColor)

	s.Net = lipgloss.NewStyle().
		Bold(true).
		Foreground(cli.PrimaryColor)

	s.CategoryBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(cli.InfoColor).
		Padding(0, 1)

	s.BarFill = lipgloss.NewStyle().
		Foreground(cli.InfoColor)

	s.BarEmpty = lipgloss.NewStyle().
		Foreground(cli.SubtleColor)

	s.Flag = lipgloss.NewStyle().
		Foreground(cli.WarningColor)

	return s
}
