package veda

import "context"

// Stream uses a pull-based iterator pattern over one transport connection.
//
// Next returns EventFragment values in arrival order. It returns io.EOF
// once the server has signalled completion and any other error on
// transport failure. After a terminal return every later call returns the
// same result.
//
// Close releases the connection. It must be safe to call concurrently with
// a blocked Next, which it unblocks, and safe to call more than once.
type Stream interface {
	Next() (Event, error)
	Close() error
}

// Transport opens streams. Open must not block on the network: connection
// errors surface from the first call to Next so the caller's event loop
// never stalls.
type Transport interface {
	Open(ctx context.Context, query string) (Stream, error)
}
