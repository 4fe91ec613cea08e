// Package pool bounds concurrent database usage. A Pool hands out at most
// MaxConns connections at a time; Acquire waits a bounded time for a free slot
// and fails with ErrPoolExhausted instead of blocking indefinitely.
package pool
