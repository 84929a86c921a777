package bubbletea

import (
	"strings"

	"github.com/vedaai/veda"
)

var (
	_ MessageBlock  = (*AnswerBlock)(nil)
	_ veda.Observer = (*AnswerBlock)(nil)
)

// AnswerBlock displays the accumulated answer document. It is the
// controller's observer: every Sync replaces the document wholesale.
//
// The document only grows within a session, so the prefix ending at the
// last paragraph break is rendered once per width and cached; only the
// trailing paragraph is re-rendered on each sync.
type AnswerBlock struct {
	doc      string
	renderer veda.Renderer

	finalizedRaw     string
	finalizedByWidth map[int]string
}

// NewAnswerBlock creates an empty AnswerBlock rendered by r.
func NewAnswerBlock(r veda.Renderer) *AnswerBlock {
	return &AnswerBlock{
		renderer:         r,
		finalizedByWidth: make(map[int]string),
	}
}

// Sync implements [veda.Observer]. Syncing the same document twice has no
// effect.
func (b *AnswerBlock) Sync(doc string) {
	if doc == b.doc {
		return
	}
	b.doc = doc
	if !strings.HasPrefix(doc, b.finalizedRaw) {
		b.finalizedRaw = ""
		clear(b.finalizedByWidth)
	}
	b.promoteFinalized()
}

// Doc returns the current document.
func (b *AnswerBlock) Doc() string { return b.doc }

func (b *AnswerBlock) View(width int) string {
	finalizedRendered := b.renderFinalized(width)
	trailing := b.trailingRaw()
	if hasUnclosedFence(trailing) {
		trailing += "\n```"
	}
	if strings.TrimSpace(trailing) == "" {
		return finalizedRendered
	}
	trailingRendered := b.renderer.Render(trailing, width)
	if strings.TrimSpace(trailingRendered) == "" {
		return finalizedRendered
	}
	if finalizedRendered == "" {
		return trailingRendered
	}
	return strings.TrimRight(finalizedRendered, "\n") + "\n\n" + strings.TrimLeft(trailingRendered, "\n")
}

// promoteFinalized moves the finalized boundary to the last "\n\n" that is
// not inside an open code fence.
func (b *AnswerBlock) promoteFinalized() {
	raw := b.doc
	for end := len(raw); ; {
		idx := strings.LastIndex(raw[:end], "\n\n")
		if idx <= 0 {
			return
		}
		candidate := raw[:idx]
		if !hasUnclosedFence(candidate) {
			if candidate != b.finalizedRaw {
				b.finalizedRaw = candidate
				clear(b.finalizedByWidth)
			}
			return
		}
		end = idx
	}
}

func (b *AnswerBlock) renderFinalized(width int) string {
	if width <= 0 || b.finalizedRaw == "" {
		return ""
	}
	if cached, ok := b.finalizedByWidth[width]; ok {
		return cached
	}
	rendered := b.renderer.Render(b.finalizedRaw, width)
	b.finalizedByWidth[width] = rendered
	return rendered
}

func (b *AnswerBlock) trailingRaw() string {
	if b.finalizedRaw == "" {
		return b.doc
	}
	return strings.TrimPrefix(b.doc, b.finalizedRaw+"\n\n")
}

// hasUnclosedFence reports an odd number of "```" in s.
func hasUnclosedFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}
