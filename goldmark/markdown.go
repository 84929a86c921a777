// Package goldmark renders answer documents to ANSI-styled terminal output
// using goldmark for parsing and lipgloss for styling.
package goldmark

import "github.com/vedaai/veda"

const defaultWidth = 80

// Interface compliance check.
var _ veda.Renderer = (*Renderer)(nil)

// Renderer renders with a fixed theme.
type Renderer struct {
	theme veda.Theme
}

// New creates a Renderer for theme.
func New(theme veda.Theme) *Renderer {
	return &Renderer{theme: theme}
}

// Render implements [veda.Renderer].
func (r *Renderer) Render(doc string, width int) string {
	return Render(doc, width, r.theme)
}

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs, headings and list items are word-wrapped to width. Code
// blocks are rendered at full width without reflow.
func Render(source string, width int, theme veda.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	r := newRenderer(theme)
	return r.render([]byte(source), width)
}
