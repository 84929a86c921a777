package sse

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/vedaai/veda"
)

// doneEvent is the named event that marks the end of an answer.
const doneEvent = "done"

type streamState int

const (
	stateNew streamState = iota
	stateOpen
	stateComplete
	stateError
)

// Interface compliance check.
var _ veda.Stream = (*stream)(nil)

// stream implements [veda.Stream] by parsing SSE events from an HTTP
// response body. Next is called from one goroutine; Close may be called
// from any goroutine and unblocks a pending Next.
type stream struct {
	ctx     context.Context
	cancel  context.CancelFunc
	connect func(context.Context) (io.ReadCloser, error)

	state  streamState
	reader *bufio.Reader
	err    error // terminal error, if any
	skipLF bool  // last line ended in CR; a following LF belongs to it

	mu     sync.Mutex
	body   io.ReadCloser
	closed atomic.Bool
}

func newStream(ctx context.Context, connect func(context.Context) (io.ReadCloser, error)) *stream {
	ctx, cancel := context.WithCancel(ctx)
	return &stream{
		ctx:     ctx,
		cancel:  cancel,
		connect: connect,
	}
}

// Next reads the next fragment from the SSE stream.
// Returns io.EOF once the done event arrives.
func (s *stream) Next() (veda.Event, error) {
	switch s.state {
	case stateComplete:
		return nil, io.EOF
	case stateError:
		return nil, s.err
	}
	if s.closed.Load() {
		return nil, veda.ErrStreamClosed
	}

	if s.state == stateNew {
		if err := s.open(); err != nil {
			return nil, s.terminate(err)
		}
	}

	for {
		name, data, err := s.readEvent()
		if err != nil {
			return nil, s.terminate(err)
		}

		switch name {
		case "", "message":
			text := sanitize(data)
			if text == "" {
				continue
			}
			return veda.EventFragment{Text: text}, nil
		case doneEvent:
			s.state = stateComplete
			return nil, io.EOF
		default:
			// Unknown named events are ignored.
		}
	}
}

// Close cancels the request and closes the response body. It is safe to
// call more than once.
func (s *stream) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.body != nil {
		return s.body.Close()
	}
	return nil
}

func (s *stream) open() error {
	body, err := s.connect(s.ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		body.Close()
		return veda.ErrStreamClosed
	}
	s.body = body
	s.reader = bufio.NewReader(body)
	s.state = stateOpen
	return nil
}

// terminate records a terminal error and returns it.
func (s *stream) terminate(err error) error {
	s.state = stateError
	switch {
	case s.closed.Load() || errors.Is(err, veda.ErrStreamClosed):
		s.err = veda.ErrStreamClosed
	case errors.Is(err, io.EOF):
		// A clean server close must be preceded by the done event.
		s.err = fmt.Errorf("sse: %w", veda.ErrUnexpectedEOF)
	default:
		s.err = fmt.Errorf("sse: %w", err)
	}
	return s.err
}

// readEvent reads lines until a complete SSE event is assembled. An event
// is dispatched at a blank line when it carries data or a name. Comments
// and the id and retry fields are ignored. An unterminated event at EOF is
// discarded.
func (s *stream) readEvent() (string, string, error) {
	var (
		eventType string
		dataLines []string
	)
	for {
		line, err := s.readLine()
		if err != nil {
			return "", "", err
		}

		if line == "" {
			if len(dataLines) > 0 || eventType != "" {
				return eventType, strings.Join(dataLines, "\n"), nil
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			eventType = value
		case "data":
			dataLines = append(dataLines, value)
		}
	}
}

// readLine reads one line terminated by LF, CR or CRLF, without the
// terminator. It never waits for the byte after a CR.
func (s *stream) readLine() (string, error) {
	var b strings.Builder
	for {
		c, err := s.reader.ReadByte()
		if err != nil {
			return "", err
		}
		skip := s.skipLF
		s.skipLF = false
		switch {
		case c == '\n' && skip:
			continue
		case c == '\n':
			return b.String(), nil
		case c == '\r':
			s.skipLF = true
			return b.String(), nil
		}
		b.WriteByte(c)
	}
}
