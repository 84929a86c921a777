// Package glamour renders answer documents with charmbracelet/glamour.
package glamour

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/vedaai/veda"
	"go.uber.org/zap"
)

const defaultWidth = 80

// Interface compliance check.
var _ veda.Renderer = (*Renderer)(nil)

// Renderer wraps a glamour TermRenderer, rebuilding it when the width
// changes.
type Renderer struct {
	style  string
	logger *zap.Logger

	mu    sync.Mutex
	width int
	term  *glamour.TermRenderer
}

// Option configures a [Renderer].
type Option func(*Renderer)

// WithStyle selects a glamour standard style ("dark", "light", "notty",
// ...). The default detects the terminal background.
func WithStyle(style string) Option {
	return func(r *Renderer) { r.style = style }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{logger: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Render implements [veda.Renderer]. When glamour fails the document is
// returned as is.
func (r *Renderer) Render(doc string, width int) string {
	if doc == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	term, err := r.termFor(width)
	if err != nil {
		r.logger.Warn("glamour renderer", zap.Error(err))
		return doc
	}
	out, err := term.Render(doc)
	if err != nil {
		r.logger.Warn("glamour render", zap.Error(err))
		return doc
	}
	return strings.Trim(out, "\n")
}

func (r *Renderer) termFor(width int) (*glamour.TermRenderer, error) {
	if r.term != nil && r.width == width {
		return r.term, nil
	}
	styleOpt := glamour.WithAutoStyle()
	if r.style != "" {
		styleOpt = glamour.WithStandardStyle(r.style)
	}
	term, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return nil, err
	}
	r.term, r.width = term, width
	return term, nil
}
