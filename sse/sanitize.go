package sse

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// sanitize strips ANSI escape sequences and control characters from
// fragment text before it reaches the terminal. Tabs, newlines and
// carriage returns are kept; the normalizer folds line endings.
func sanitize(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t', r == '\n', r == '\r':
			return r
		case r <= 0x1F, r == 0x7F:
			return -1
		}
		return r
	}, s)
}
