// Package console renders catalog data for the terminal.
package console

import "github.com/charmbracelet/lipgloss"

// Styles groups the lipgloss styles used by the renderers.
type Styles struct {
	Title   lipgloss.Style
	Bold    lipgloss.Style
	Body    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// DefaultStyles returns the styles used by the CLI. Colors degrade to plain
// text when the output is not a terminal.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).MarginBottom(1),
		Bold:    lipgloss.NewStyle().Bold(true),
		Body:    lipgloss.NewStyle(),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB000")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F56")),
	}
}
