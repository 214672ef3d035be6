// Package styles holds the terminal palette shared by the CLI and TUI.
package styles

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Monokai Pro palette
const (
	Background = "#2D2A2E"
	Foreground = "#FCFCFA"

	Red    = "#FF6188" // errors
	Orange = "#FC9867" // warnings, skipped pages
	Yellow = "#FFD866" // highlights
	Green  = "#A9DC76" // success
	Cyan   = "#78DCE8" // paths
	Purple = "#AB9DF2" // titles

	Comment = "#727072"
	Border  = "#5B595C"
)

var (
	SuccessStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(Green))
	ErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(Red))
	WarningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(Orange))
	DimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color(Comment))
	TitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(Purple))
	HighlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(Yellow)).Bold(true)
	PathStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(Cyan))
	SpinnerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(Purple))

	LabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(Comment)).Bold(true)
	ValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(Foreground))

	TableBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(Border))
)

// TableStyles returns the bubbles table styles in the palette
func TableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(Border)).
		BorderBottom(true).
		Foreground(lipgloss.Color(Purple)).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(Background)).
		Background(lipgloss.Color(Yellow)).
		Bold(false)
	return s
}
