package bubbletea

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	brand    = "VedaAI"
	greeting = "Hello, "
	ellipsis = "…"
)

// headerLine renders the brand on the left and the greeting on the right,
// truncating the username so the line never exceeds width.
func headerLine(username string, width int, styles Styles) string {
	left := styles.Title.Render(brand)
	room := width - lipgloss.Width(left) - 1
	if room <= runewidth.StringWidth(greeting) {
		return left
	}
	hello := greeting + username
	if runewidth.StringWidth(hello) > room {
		hello = runewidth.Truncate(hello, room, ellipsis)
	}
	right := styles.Muted.Render(hello)
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	return left + strings.Repeat(" ", max(gap, 1)) + right
}
