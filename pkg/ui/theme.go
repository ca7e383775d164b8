// Package ui provides the terminal user interface for sv: a bubbletea list
// surface that hosts an expansion controller.
package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds the colors and base styles used across the UI. Styles are
// built from Renderer so tests can render without a terminal.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor
	Text      lipgloss.AdaptiveColor
	BgBar     lipgloss.AdaptiveColor

	Base     lipgloss.Style
	Selected lipgloss.Style
	Header   lipgloss.Style
}

// DefaultTheme returns the Dracula-flavored theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#F1FA8C"},
		Highlight: lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#8BE9FD"},
		Muted:     lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6272A4"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#374151", Dark: "#BFBFBF"},
		Border:    lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#44475A"},
		Error:     lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#FF5555"},
		Text:      lipgloss.AdaptiveColor{Light: "#000000", Dark: "#f8f8f2"},
		BgBar:     lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#282A36"},
	}

	t.Base = r.NewStyle().Foreground(t.Text)
	t.Selected = r.NewStyle().
		Background(t.Border).
		Foreground(t.Highlight).
		Bold(true)
	t.Header = r.NewStyle().
		Foreground(t.Primary).
		Bold(true)
	return t
}
