// Package bubbletea provides a Bubble Tea TUI for asking VedaAI questions
// and watching the answer stream in.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vedaai/veda"
)

// Run creates and runs the Bubble Tea program. It blocks until the program
// exits. When ctx is cancelled the program quits. Any open stream is
// closed before Run returns.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	m.ctrl.Cancel()
	return err
}

// DeliveryMsg carries one delivery from the channel it was read from.
type DeliveryMsg struct {
	Delivery veda.Delivery
	ch       <-chan veda.Delivery
}

// SessionEndedMsg signals that a delivery channel was closed.
type SessionEndedMsg struct {
	ch <-chan veda.Delivery
}

// listenForDelivery waits for the next delivery on ch.
func listenForDelivery(ch <-chan veda.Delivery) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		d, ok := <-ch
		if !ok {
			return SessionEndedMsg{ch: ch}
		}
		return DeliveryMsg{Delivery: d, ch: ch}
	}
}
