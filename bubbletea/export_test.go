package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vedaai/veda"
)

// Listen exports listenForDelivery on the model's current channel.
func Listen(m Model) tea.Cmd {
	return listenForDelivery(m.ctrl.Deliveries())
}

// NewDeliveryMsg builds a DeliveryMsg that is not tied to any channel.
func NewDeliveryMsg(d veda.Delivery) DeliveryMsg {
	return DeliveryMsg{Delivery: d}
}

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// HeaderLine exports headerLine for testing.
func HeaderLine(username string, width int, styles Styles) string {
	return headerLine(username, width, styles)
}
