package bubbletea_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedaai/veda"
	bt "github.com/vedaai/veda/bubbletea"
	"github.com/vedaai/veda/mock"
)

func TestNew(t *testing.T) {
	t.Parallel()

	m := bt.New(&mock.Transport{}, veda.Identity{Username: "asha"})

	assert.False(t, m.Streaming())
	assert.Nil(t, m.Session())
	assert.NoError(t, m.Err())
	assert.Equal(t, "Initializing...", m.View())
}

func TestModel_Layout(t *testing.T) {
	t.Parallel()

	t.Run("window size initializes viewport", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, &mock.Transport{})
		assert.Equal(t, 80, m.Viewport.Width)
		assert.Equal(t, 19, m.Viewport.Height) // 24 - header - status - input - 2
		assert.Contains(t, m.View(), "VedaAI")
		assert.Contains(t, m.View(), "Hello, asha")
	})

	t.Run("resize updates viewport dimensions", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, &mock.Transport{})
		m = updateModel(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
		assert.Equal(t, 120, m.Viewport.Width)
		assert.Equal(t, 35, m.Viewport.Height)
	})

	t.Run("resize re-renders answer at the new width", func(t *testing.T) {
		t.Parallel()
		longLine := "word1 word2 word3 word4 word5 word6 word7 word8"
		tr := streamsTransport(t, &mock.ScriptedStream{Fragments: []string{longLine}})
		m := drain(t, submit(t, initModelWithSize(t, tr, 30, 20), "q"))

		m = updateModel(t, m, tea.WindowSizeMsg{Width: 120, Height: 20})

		found := false
		for _, line := range strings.Split(m.Viewport.View(), "\n") {
			if strings.Contains(line, "word1") && strings.Contains(line, "word8") {
				found = true
			}
		}
		assert.True(t, found, "expected word1 and word8 on one line after resize:\n%s", m.Viewport.View())
	})

	t.Run("tiny terminal keeps a one-row viewport", func(t *testing.T) {
		t.Parallel()
		m := initModelWithSize(t, &mock.Transport{}, 20, 3)
		assert.Equal(t, 1, m.Viewport.Height)
	})
}

func TestModel_Keys(t *testing.T) {
	t.Parallel()

	t.Run("ctrl+c when idle quits", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, &mock.Transport{})
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		require.NotNil(t, cmd)
		_, isQuit := cmd().(tea.QuitMsg)
		assert.True(t, isQuit)
	})

	t.Run("enter with blank input does nothing", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, &mock.Transport{})
		m.Input.SetValue("   ")
		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		assert.Nil(t, cmd)
		assert.Nil(t, updated.(bt.Model).Session())
	})

	t.Run("typing fills the input", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, &mock.Transport{})
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("jk")})
		assert.Equal(t, "jk", m.Input.Value())
	})
}

func TestModel_Streaming(t *testing.T) {
	t.Parallel()

	t.Run("answer streams into the viewport", func(t *testing.T) {
		t.Parallel()
		tr := streamsTransport(t, &mock.ScriptedStream{
			Fragments: []string{"Hi. This is VedaAI speaking.", "Overview\nSome details here."},
		})
		m := submit(t, initModel(t, tr), "hello")
		assert.True(t, m.Streaming())
		assert.Empty(t, m.Input.Value(), "input is cleared on submit")
		assert.Contains(t, m.View(), "Thinking...")

		m = drain(t, m)

		s := m.Session()
		require.NotNil(t, s)
		assert.Equal(t, veda.StateDone, s.State)
		assert.Equal(t, "Hi.\n\nThis is VedaAI speaking.\n### Overview\n\nSome details here.", s.Buffer.String())

		view := m.View()
		assert.Contains(t, view, "> hello")
		assert.Contains(t, view, "This is VedaAI speaking.")
		assert.Contains(t, view, "Some details here.")
		assert.Contains(t, view, "Enter to send")
	})

	t.Run("status changes once text arrives", func(t *testing.T) {
		t.Parallel()
		stream := &mock.ScriptedStream{Fragments: []string{"partial"}, Hold: true}
		m := submit(t, initModel(t, streamsTransport(t, stream)), "q")
		m = updateModel(t, m, bt.Listen(m)())

		assert.True(t, m.Streaming())
		assert.Contains(t, m.View(), "partial")
		assert.Contains(t, m.View(), "Esc to stop")
		assert.NotContains(t, m.View(), "Thinking...")

		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEsc})
		assert.True(t, stream.Closed())
	})

	t.Run("viewport stays pinned to the bottom", func(t *testing.T) {
		t.Parallel()
		frags := make([]string, 40)
		for i := range frags {
			frags[i] = "line of the answer"
		}
		tr := streamsTransport(t, &mock.ScriptedStream{Fragments: frags})
		m := drain(t, submit(t, initModel(t, tr), "q"))
		assert.True(t, m.Viewport.AtBottom())
	})

	t.Run("failure shows the error message", func(t *testing.T) {
		t.Parallel()
		tr := streamsTransport(t, &mock.ScriptedStream{Fragments: []string{"partial"}, Err: errors.New("reset")})
		m := drain(t, submit(t, initModel(t, tr), "q"))

		assert.Equal(t, veda.StateErrored, m.Session().State)
		view := stripANSI(bt.RenderContent(m))
		assert.Contains(t, view, "partial")
		assert.Contains(t, view, veda.ErrorMessage)
		assert.NoError(t, m.Err(), "a failed session is not a model error")
	})

	t.Run("open failure shows the error message", func(t *testing.T) {
		t.Parallel()
		tr := &mock.Transport{OpenFn: func(ctx context.Context, query string) (veda.Stream, error) {
			return nil, errors.New("dial refused")
		}}
		m := initModel(t, tr)
		m.Input.SetValue("q")
		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m = updated.(bt.Model)
		assert.Nil(t, cmd, "nothing to listen to")
		assert.False(t, m.Streaming())
		assert.Equal(t, veda.StateErrored, m.Session().State)
		assert.Contains(t, stripANSI(bt.RenderContent(m)), veda.ErrorMessage)
	})

	t.Run("new submission clears the previous answer", func(t *testing.T) {
		t.Parallel()
		tr := streamsTransport(t,
			&mock.ScriptedStream{Err: errors.New("boom")},
			&mock.ScriptedStream{Fragments: []string{"fresh answer"}},
		)
		m := drain(t, submit(t, initModel(t, tr), "first"))
		require.Contains(t, stripANSI(bt.RenderContent(m)), veda.ErrorMessage)

		m = drain(t, submit(t, m, "second"))
		content := stripANSI(bt.RenderContent(m))
		assert.NotContains(t, content, veda.ErrorMessage)
		assert.NotContains(t, content, "first")
		assert.Contains(t, content, "> second")
		assert.Contains(t, content, "fresh answer")
	})
}

func TestModel_Cancel(t *testing.T) {
	t.Parallel()

	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		t.Run(key.String(), func(t *testing.T) {
			t.Parallel()
			stream := &mock.ScriptedStream{Hold: true}
			m := submit(t, initModel(t, streamsTransport(t, stream)), "q")
			require.True(t, m.Streaming())

			updated, cmd := m.Update(tea.KeyMsg{Type: key})
			m = updated.(bt.Model)
			assert.Nil(t, cmd, "cancelling must not quit")
			assert.False(t, m.Streaming())
			assert.True(t, stream.Closed())
			assert.Equal(t, veda.StateIdle, m.Session().State)
			assert.Contains(t, m.View(), "Cancelled")
		})
	}
}

func TestModel_Supersede(t *testing.T) {
	t.Parallel()

	first := &mock.ScriptedStream{Fragments: []string{"old answer"}, Hold: true}
	second := &mock.ScriptedStream{Fragments: []string{"new answer"}}
	m := submit(t, initModel(t, streamsTransport(t, first, second)), "first")
	stale := bt.Listen(m)
	m = updateModel(t, m, stale())
	require.Contains(t, bt.RenderContent(m), "old answer")
	old := m.Session()

	m = submit(t, m, "second")
	assert.True(t, first.Closed(), "previous stream is closed")
	assert.Equal(t, veda.StateIdle, old.State)

	// A delivery for the superseded session changes nothing.
	m = updateModel(t, m, bt.NewDeliveryMsg(veda.Delivery{SessionID: old.ID, Event: veda.EventFragment{Text: "stale"}}))
	assert.NotContains(t, bt.RenderContent(m), "stale")

	m = drain(t, m)
	content := bt.RenderContent(m)
	assert.Contains(t, content, "new answer")
	assert.NotContains(t, content, "old answer")
	assert.Equal(t, veda.StateDone, m.Session().State)
}

func TestModel_Header(t *testing.T) {
	t.Parallel()

	styles := bt.NewStyles(veda.DefaultTheme())

	t.Run("greets the user on the right", func(t *testing.T) {
		t.Parallel()
		line := stripANSI(bt.HeaderLine("asha", 40, styles))
		assert.True(t, strings.HasPrefix(line, "VedaAI"))
		assert.True(t, strings.HasSuffix(line, "Hello, asha"))
		assert.Len(t, []rune(line), 40)
	})

	t.Run("guest identity", func(t *testing.T) {
		t.Parallel()
		m := updateModel(t, bt.New(&mock.Transport{}, veda.Identity{}), tea.WindowSizeMsg{Width: 80, Height: 24})
		assert.Contains(t, m.View(), "Hello, Guest")
	})

	t.Run("long names are truncated", func(t *testing.T) {
		t.Parallel()
		line := stripANSI(bt.HeaderLine(strings.Repeat("x", 50), 30, styles))
		assert.Equal(t, 30, lipgloss.Width(line))
		assert.Contains(t, line, "…")
	})

	t.Run("too narrow drops the greeting", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "VedaAI", stripANSI(bt.HeaderLine("asha", 10, styles)))
	})
}

func TestModel_Program(t *testing.T) {
	t.Parallel()

	stream := &mock.ScriptedStream{Fragments: []string{"Turmeric is a root. It is yellow."}}
	m := bt.New(streamsTransport(t, stream), veda.Identity{Username: "asha"})

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	tm.Type("what is turmeric")
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("It is yellow.")) &&
			bytes.Contains(out, []byte("Enter to send"))
	}, teatest.WithDuration(5*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

	fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
	final, ok := fm.(bt.Model)
	require.True(t, ok)
	assert.False(t, final.Streaming())
	assert.Equal(t, veda.StateDone, final.Session().State)
	assert.Equal(t, "what is turmeric", final.Session().Query)
	assert.True(t, stream.Closed())
}
