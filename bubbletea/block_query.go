package bubbletea

import "github.com/charmbracelet/lipgloss"

var _ MessageBlock = (*QueryBlock)(nil)

// QueryBlock renders the submitted query with a "> " prefix.
type QueryBlock struct {
	text   string
	styles Styles
}

// NewQueryBlock creates a QueryBlock.
func NewQueryBlock(text string, styles Styles) *QueryBlock {
	return &QueryBlock{text: text, styles: styles}
}

func (b *QueryBlock) View(width int) string {
	content := b.styles.Query.Render("> ") + b.text
	return lipgloss.NewStyle().Width(width).Render(content)
}
