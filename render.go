package veda

// Renderer turns an accumulated answer document into terminal output
// wrapped to width columns.
type Renderer interface {
	Render(doc string, width int) string
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(doc string, width int) string

// Render calls f(doc, width).
func (f RendererFunc) Render(doc string, width int) string { return f(doc, width) }

// PlainRenderer returns documents unchanged.
var PlainRenderer Renderer = RendererFunc(func(doc string, _ int) string { return doc })
