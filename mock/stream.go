package mock

import (
	"io"
	"sync"

	"github.com/vedaai/veda"
)

// Interface compliance check.
var _ veda.Stream = (*Stream)(nil)

// Stream is a test double for veda.Stream.
// Set the function fields for the methods you need. NextFn panics when nil
// to catch missing setup. CloseFn is nil-safe (no-op) because test code
// commonly calls defer stream.Close().
type Stream struct {
	NextFn  func() (veda.Event, error)
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (veda.Event, error) {
	return s.NextFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// ScriptedStream replays fragments and then a terminal result. When Hold is
// set, Next blocks after the script until Close is called, which models a
// live connection that is still open. ScriptedStream is safe for the
// concurrent Next/Close use the Controller makes of it.
type ScriptedStream struct {
	Fragments []string
	Err       error // terminal error; nil means io.EOF
	Hold      bool

	mu     sync.Mutex
	pos    int
	closed bool
	once   sync.Once
	done   chan struct{}
}

// Interface compliance check.
var _ veda.Stream = (*ScriptedStream)(nil)

func (s *ScriptedStream) init() {
	s.once.Do(func() { s.done = make(chan struct{}) })
}

// Next returns the next scripted fragment or the terminal result.
func (s *ScriptedStream) Next() (veda.Event, error) {
	s.init()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, veda.ErrStreamClosed
	}
	if s.pos < len(s.Fragments) {
		f := s.Fragments[s.pos]
		s.pos++
		s.mu.Unlock()
		return veda.EventFragment{Text: f}, nil
	}
	s.mu.Unlock()

	if s.Hold {
		<-s.done
		return nil, veda.ErrStreamClosed
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return nil, io.EOF
}

// Close marks the stream closed and releases a held Next.
func (s *ScriptedStream) Close() error {
	s.init()
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	return nil
}

// Closed reports whether Close was called.
func (s *ScriptedStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
