package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/vedaai/veda"
)

// Styles maps a Theme to lipgloss styles for TUI rendering.
type Styles struct {
	Query   lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
	Title   lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t veda.Theme) Styles {
	return Styles{
		Query:   lipgloss.NewStyle().Foreground(ansiColor(t.Query)).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(ansiColor(t.Error)),
		Success: lipgloss.NewStyle().Foreground(ansiColor(t.Success)),
		Muted:   lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
		Accent:  lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
		Title:   lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true).Underline(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
