package pool

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultMaxConns       = 5
	DefaultAcquireTimeout = 5 * time.Second
	DefaultConnectTimeout = 30 * time.Second
)

// Config holds pool limits.
type Config struct {
	// MaxConns is the maximum number of concurrently checked out connections.
	// If 0, DefaultMaxConns is used.
	MaxConns int

	// AcquireTimeout bounds how long Acquire waits for a free connection.
	// If 0, DefaultAcquireTimeout is used.
	AcquireTimeout time.Duration

	// ConnectTimeout bounds the connectivity check performed by New.
	// If 0, DefaultConnectTimeout is used.
	ConnectTimeout time.Duration

	// DryRun skips all database I/O; Acquire hands out stub connections.
	DryRun bool
}

// Opener opens the database backing a pool.
type Opener func() (*sql.DB, error)

// Pool manages a bounded set of database connections.
type Pool struct {
	cfg Config
	db  *sql.DB
	sem *semaphore.Weighted

	mu     sync.Mutex
	closed bool
	inUse  int
}

// New creates a pool. Unless cfg.DryRun is set, it opens the database and
// verifies it answers, retrying with exponential backoff until
// cfg.ConnectTimeout elapses.
func New(ctx context.Context, open Opener, cfg Config) (*Pool, error) {
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = DefaultMaxConns
	}
	if cfg.AcquireTimeout <= 0 {
		cfg.AcquireTimeout = DefaultAcquireTimeout
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	p := &Pool{cfg: cfg, sem: semaphore.NewWeighted(int64(cfg.MaxConns))}
	if cfg.DryRun {
		return p, nil
	}
	if open == nil {
		return nil, fmt.Errorf("pool: opener is nil")
	}
	db, err := open()
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MaxConns)
	if err := pingWithRetry(ctx, db, cfg.ConnectTimeout); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	p.db = db
	return p, nil
}

// pingWithRetry pings with exponential backoff.
// Initial interval 200ms, max interval 5s, bounded by timeout.
func pingWithRetry(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 200 * time.Millisecond
	exponentialBackoff.MaxInterval = 5 * time.Second
	exponentialBackoff.MaxElapsedTime = timeout

	operation := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return db.PingContext(pingCtx)
	}
	return backoff.Retry(operation, backoff.WithContext(exponentialBackoff, ctx))
}

// Acquire checks out a connection. It waits at most AcquireTimeout for a
// free slot and then fails with ErrPoolExhausted. If ctx ends first its error
// is returned. Every successful Acquire must be paired with Release.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	if p.Closed() {
		return nil, ErrPoolClosed
	}
	waitCtx, cancel := context.WithTimeout(ctx, p.cfg.AcquireTimeout)
	defer cancel()
	if err := p.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %d of %d connections in use after %s", ErrPoolExhausted, p.InUse(), p.cfg.MaxConns, p.cfg.AcquireTimeout)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.sem.Release(1)
		return nil, ErrPoolClosed
	}
	p.inUse++
	p.mu.Unlock()

	c := &Conn{pool: p}
	if p.cfg.DryRun {
		return c, nil
	}
	if err := p.checkout(ctx, c); err != nil {
		p.release()
		return nil, err
	}
	return c, nil
}

// checkout binds a database connection to c. A Close racing with Acquire
// surfaces as ErrPoolClosed.
func (p *Pool) checkout(ctx context.Context, c *Conn) error {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		if p.Closed() {
			return ErrPoolClosed
		}
		return fmt.Errorf("pool: checkout: %w", err)
	}
	c.conn = conn
	return nil
}

// Release returns c to the pool. Releasing the same handle twice is a no-op.
func (p *Pool) Release(c *Conn) {
	if c == nil || c.pool != p {
		return
	}
	c.once.Do(func() {
		if c.conn != nil {
			_ = c.conn.Close()
		}
		p.release()
	})
}

func (p *Pool) release() {
	p.mu.Lock()
	p.inUse--
	p.mu.Unlock()
	p.sem.Release(1)
}

// With runs fn on a checked out connection and releases it on every exit
// path, including panics.
func (p *Pool) With(ctx context.Context, fn func(ctx context.Context, conn *Conn) error) error {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer p.Release(conn)
	return fn(ctx, conn)
}

// Close closes the underlying database. Subsequent Acquire calls fail with
// ErrPoolClosed; connections still checked out are closed on Release.
// Calling Close more than once is a no-op.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// Closed reports whether Close has been called.
func (p *Pool) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// InUse returns the number of checked out connections.
func (p *Pool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inUse
}

// Max returns the configured connection limit.
func (p *Pool) Max() int { return p.cfg.MaxConns }

// DryRun reports whether the pool was built in dry-run mode.
func (p *Pool) DryRun() bool { return p.cfg.DryRun }
