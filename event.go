package veda

// Event is a sealed interface representing a transport event.
// The set is closed: a fragment arrived, the stream completed, or the
// transport failed. The unexported marker method prevents external
// implementations.
type Event interface {
	event()
}

// EventFragment carries one raw text delta in arrival order.
type EventFragment struct {
	Text string
}

func (EventFragment) event() {}

// EventDone signals the server's explicit completion marker.
type EventDone struct{}

func (EventDone) event() {}

// EventFailed signals a transport-level failure. Err is for logging only;
// users see a single generic message.
type EventFailed struct {
	Err error
}

func (EventFailed) event() {}

// Delivery is an event tagged with the session it belongs to. Deliveries
// from superseded sessions are discarded by the Controller.
type Delivery struct {
	SessionID string
	Event     Event
}

// Interface compliance checks.
var (
	_ Event = EventFragment{}
	_ Event = EventDone{}
	_ Event = EventFailed{}
)
