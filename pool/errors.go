package pool

import "errors"

var (
	// ErrPoolExhausted is returned when no connection frees up within the
	// acquire timeout.
	ErrPoolExhausted = errors.New("pool: exhausted")
	// ErrPoolClosed is returned by Acquire after Close.
	ErrPoolClosed = errors.New("pool: closed")
	// ErrUnreachable is returned by New when the database does not answer
	// within the connect timeout.
	ErrUnreachable = errors.New("pool: database unreachable")
)
