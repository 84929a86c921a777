package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain text", in: "Turmeric is a spice.", want: "Turmeric is a spice."},
		{name: "sgr colors", in: "\x1b[31mred\x1b[0m text", want: "red text"},
		{name: "osc title", in: "\x1b]0;pwned\x07answer", want: "answer"},
		{name: "bell and backspace", in: "a\x07b\x08c", want: "abc"},
		{name: "delete", in: "a\x7fb", want: "ab"},
		{name: "keeps layout", in: "a\tb\r\nc\n", want: "a\tb\r\nc\n"},
		{name: "unicode", in: "हल्दी ✓", want: "हल्दी ✓"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sanitize(tt.in))
		})
	}
}
