package veda

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// deliveryBuffer bounds how far the reader may run ahead of the handler.
const deliveryBuffer = 64

// Observer is notified once per change of the display document, in order.
// Implementations must be idempotent: a redundant Sync with the same
// document has no visible effect.
type Observer interface {
	Sync(doc string)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(doc string)

// Sync calls f(doc).
func (f ObserverFunc) Sync(doc string) { f(doc) }

// Controller owns the lifecycle of stream sessions. At most one transport
// connection is open at a time.
//
// Submit, Handle and Cancel must be called from a single goroutine (the
// event loop). The only other goroutine is the per-session reader that
// pulls events from the stream and forwards them on Deliveries.
type Controller struct {
	transport Transport
	observer  Observer
	logger    *zap.Logger
	idle      time.Duration

	session    *StreamSession
	stream     Stream
	cancel     context.CancelFunc
	deliveries chan Delivery
	readerDone chan struct{}
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithObserver sets the view observer notified on every document change.
func WithObserver(o Observer) ControllerOption {
	return func(c *Controller) { c.observer = o }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) ControllerOption {
	return func(c *Controller) { c.logger = l }
}

// WithIdleTimeout fails a session when no event arrives within d.
// Zero disables the timeout.
func WithIdleTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) { c.idle = d }
}

// NewController creates a Controller that opens streams with t.
func NewController(t Transport, opts ...ControllerOption) *Controller {
	c := &Controller{
		transport: t,
		observer:  ObserverFunc(func(string) {}),
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Session returns the current session, or nil before the first Submit.
func (c *Controller) Session() *StreamSession { return c.session }

// Deliveries returns the delivery channel of the current session. It is
// closed when the session's reader exits. Nil when no session was opened.
func (c *Controller) Deliveries() <-chan Delivery { return c.deliveries }

// Submit starts a new session for query. Any in-flight session is closed
// first, so two transports are never open at once. A whitespace-only query
// returns ErrEmptyQuery without touching the current session.
func (c *Controller) Submit(ctx context.Context, query string) (*StreamSession, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, ErrEmptyQuery
	}

	if c.session != nil && c.session.State == StateStreaming {
		c.logger.Debug("superseding session", zap.String("session", c.session.ID))
		c.release()
		c.session.State = StateIdle
	}

	s := newStreamSession(q)
	c.session = s
	c.deliveries = nil
	c.observer.Sync(s.Buffer.String())
	s.State = StateStreaming

	ctx, cancel := context.WithCancel(ctx)
	stream, err := c.transport.Open(ctx, q)
	if err != nil {
		cancel()
		c.fail(s, err)
		return s, err
	}

	c.stream = stream
	c.cancel = cancel
	c.deliveries = make(chan Delivery, deliveryBuffer)
	c.readerDone = make(chan struct{})
	go c.read(ctx, s.ID, stream, c.deliveries, c.readerDone)

	c.logger.Debug("session started", zap.String("session", s.ID), zap.String("query", q))
	return s, nil
}

// Handle applies one delivery to the current session. Deliveries from
// superseded sessions are ignored. Events for a session that is not
// streaming return ErrIllegalTransition.
func (c *Controller) Handle(d Delivery) error {
	s := c.session
	if s == nil || d.SessionID != s.ID {
		return nil
	}
	if s.State != StateStreaming {
		return fmt.Errorf("%w: %T while %s", ErrIllegalTransition, d.Event, s.State)
	}

	switch e := d.Event.(type) {
	case EventFragment:
		doc := s.Buffer.Append(Normalize(e.Text))
		s.UpdatedAt = time.Now()
		c.observer.Sync(doc)
	case EventDone:
		c.release()
		s.State = StateDone
		s.UpdatedAt = time.Now()
		c.logger.Info("session done",
			zap.String("session", s.ID),
			zap.Int("fragments", s.Buffer.Fragments()),
			zap.Int("bytes", s.Buffer.Len()))
	case EventFailed:
		c.release()
		c.fail(s, e.Err)
	default:
		return fmt.Errorf("%w: unknown event %T", ErrIllegalTransition, d.Event)
	}
	return nil
}

// Cancel closes the current stream, if any, and returns a streaming
// session to idle. Safe to call at any time.
func (c *Controller) Cancel() {
	if c.session == nil || c.session.State != StateStreaming {
		return
	}
	c.release()
	c.session.State = StateIdle
	c.session.UpdatedAt = time.Now()
	c.logger.Debug("session cancelled", zap.String("session", c.session.ID))
}

// Run submits query and handles deliveries until the session reaches a
// terminal state. On context cancellation the session is cancelled and
// ctx.Err() is returned. A transport failure is returned as the error.
func (c *Controller) Run(ctx context.Context, query string) (*StreamSession, error) {
	s, err := c.Submit(ctx, query)
	if err != nil {
		return s, err
	}
	ch := c.deliveries
	for !s.State.Terminal() {
		select {
		case <-ctx.Done():
			c.Cancel()
			return s, ctx.Err()
		case d, ok := <-ch:
			if !ok {
				return s, fmt.Errorf("deliveries closed while %s", s.State)
			}
			if err := c.Handle(d); err != nil {
				return s, err
			}
		}
	}
	return s, s.Err
}

func (c *Controller) fail(s *StreamSession, err error) {
	s.State = StateErrored
	s.ErrorMessage = ErrorMessage
	s.Err = err
	s.UpdatedAt = time.Now()
	c.logger.Warn("session failed", zap.String("session", s.ID), zap.Error(err))
}

// release closes the open stream and waits for its reader to exit.
func (c *Controller) release() {
	if c.stream == nil {
		return
	}
	c.cancel()
	if err := c.stream.Close(); err != nil {
		c.logger.Debug("close stream", zap.Error(err))
	}
	<-c.readerDone
	c.stream = nil
	c.cancel = nil
	c.readerDone = nil
}

// read forwards stream events until a terminal event or cancellation.
// The idle timer runs only while Next is blocked, so a slow handler never
// counts as transport inactivity.
func (c *Controller) read(ctx context.Context, id string, stream Stream, out chan<- Delivery, done chan<- struct{}) {
	defer close(done)
	defer close(out)

	var expired atomic.Bool
	var timer *time.Timer
	if c.idle > 0 {
		timer = time.AfterFunc(c.idle, func() {
			expired.Store(true)
			_ = stream.Close()
		})
		timer.Stop()
		defer timer.Stop()
	}

	for {
		if timer != nil {
			timer.Reset(c.idle)
		}
		evt, err := stream.Next()
		if timer != nil {
			timer.Stop()
		}

		d := Delivery{SessionID: id, Event: evt}
		switch {
		case errors.Is(err, io.EOF):
			d.Event = EventDone{}
		case err != nil:
			if expired.Load() {
				err = fmt.Errorf("%w after %s", ErrIdleTimeout, c.idle)
			}
			d.Event = EventFailed{Err: err}
		}

		select {
		case out <- d:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}
