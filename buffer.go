package veda

import "strings"

// Buffer is the append-only display document of one session. Fragments are
// joined by a single newline. Nothing is removed except by Reset.
type Buffer struct {
	doc       strings.Builder
	fragments int
}

// Reset clears the document.
func (b *Buffer) Reset() {
	b.doc.Reset()
	b.fragments = 0
}

// Append adds a normalized fragment and returns the updated document.
func (b *Buffer) Append(fragment string) string {
	if b.fragments > 0 {
		b.doc.WriteByte('\n')
	}
	b.doc.WriteString(fragment)
	b.fragments++
	return b.doc.String()
}

// String returns the current document.
func (b *Buffer) String() string { return b.doc.String() }

// Len returns the document length in bytes.
func (b *Buffer) Len() int { return b.doc.Len() }

// Fragments returns how many fragments were appended since the last Reset.
func (b *Buffer) Fragments() int { return b.fragments }
