package bubbletea_test

import (
	"context"
	"regexp"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"github.com/vedaai/veda"
	bt "github.com/vedaai/veda/bubbletea"
	"github.com/vedaai/veda/mock"
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

// streamsTransport opens the given streams in order.
func streamsTransport(t *testing.T, streams ...veda.Stream) *mock.Transport {
	t.Helper()
	var mu sync.Mutex
	next := 0
	return &mock.Transport{OpenFn: func(ctx context.Context, query string) (veda.Stream, error) {
		mu.Lock()
		defer mu.Unlock()
		require.Less(t, next, len(streams), "unexpected Open for %q", query)
		next++
		return streams[next-1], nil
	}}
}

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, tr veda.Transport, opts ...bt.Option) bt.Model {
	t.Helper()
	return initModelWithSize(t, tr, 80, 24, opts...)
}

// initModelWithSize creates a model with a custom terminal size.
func initModelWithSize(t *testing.T, tr veda.Transport, width, height int, opts ...bt.Option) bt.Model {
	t.Helper()
	m := bt.New(tr, veda.Identity{Username: "asha"}, opts...)
	return updateModel(t, m, tea.WindowSizeMsg{Width: width, Height: height})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// submit types query and presses Enter.
func submit(t *testing.T, m bt.Model, query string) bt.Model {
	t.Helper()
	m.Input.SetValue(query)
	return updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

// drain applies deliveries until the session stops streaming.
func drain(t *testing.T, m bt.Model) bt.Model {
	t.Helper()
	for m.Streaming() {
		m = updateModel(t, m, bt.Listen(m)())
	}
	return m
}
