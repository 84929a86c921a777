package veda

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrEmptyQuery indicates a submission with no text after trimming.
	// No session is created and no transport is opened.
	ErrEmptyQuery = errors.New("empty query")

	// ErrUnauthorized indicates the server rejected the current credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")

	// ErrUnexpectedEOF indicates the stream ended without a completion event.
	ErrUnexpectedEOF = errors.New("unexpected end of stream")

	// ErrIdleTimeout indicates no event arrived within the configured
	// inactivity window.
	ErrIdleTimeout = errors.New("stream idle timeout")

	// ErrIllegalTransition indicates an event was applied to a session
	// that is not streaming.
	ErrIllegalTransition = errors.New("illegal state transition")
)
