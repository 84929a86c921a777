package veda

import (
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of a StreamSession.
type State int

const (
	StateIdle      State = iota // No active transport.
	StateStreaming              // Transport open, fragments accepted.
	StateDone                   // Server signalled completion.
	StateErrored                // Transport failed.
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateDone:
		return "done"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further events are accepted in this state.
func (s State) Terminal() bool {
	return s == StateDone || s == StateErrored
}

// ErrorMessage is the single user-facing message recorded when a session
// fails.
const ErrorMessage = "Something went wrong. Please try again."

// StreamSession is the lifecycle of one query from submission to a
// terminal state. It is mutated only by its Controller and must not be
// copied after first use.
type StreamSession struct {
	ID           string
	Query        string
	State        State
	Buffer       Buffer
	ErrorMessage string // set only when State is StateErrored
	Err          error  // underlying transport error, for logging
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func newStreamSession(query string) *StreamSession {
	now := time.Now()
	return &StreamSession{
		ID:        uuid.NewString(),
		Query:     query,
		State:     StateIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
