package pool

import (
	"context"
	"database/sql"
	"sync"
)

// Conn is a checked out connection. In dry-run mode it carries no database
// connection and Dry reports true; callers short-circuit instead of issuing
// statements.
type Conn struct {
	pool *Pool
	conn *sql.Conn
	once sync.Once
}

// Dry reports whether c is a dry-run stub.
func (c *Conn) Dry() bool { return c.conn == nil }

// ExecContext executes a statement on the underlying connection.
func (c *Conn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.conn.ExecContext(ctx, query, args...)
}

// QueryRowContext runs a single-row query on the underlying connection.
func (c *Conn) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return c.conn.QueryRowContext(ctx, query, args...)
}

// PrepareContext prepares a statement bound to the underlying connection.
func (c *Conn) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	return c.conn.PrepareContext(ctx, query)
}
