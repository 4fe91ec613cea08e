package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/viant/docstore/config"
	"github.com/viant/docstore/document"
	"github.com/viant/docstore/engine"
	"github.com/viant/docstore/payload"
	"github.com/viant/docstore/pool"
	"github.com/viant/docstore/vector"
)

// Store persists document nodes into a single table keyed by id. It is safe
// for concurrent use; concurrency is bounded by the connection pool.
type Store struct {
	cfg       config.Config
	dialect   engine.Dialect
	pool      *pool.Pool
	codec     payload.Codec
	dtype     vector.DType
	traversal document.Traversal
	logger    *slog.Logger

	upsertSQL string
	lookupSQL string
	countSQL  string
}

// New validates cfg, connects the pool and ensures the table exists. In
// dry-run mode no connection is made and the schema is left alone.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Store, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	dialect, err := cfg.Dialect()
	if err != nil {
		return nil, err
	}
	dtype, err := vector.ParseDType(cfg.DumpDType)
	if err != nil {
		return nil, err
	}
	compression, err := payload.ParseCompression(cfg.PayloadCompression)
	if err != nil {
		return nil, err
	}
	traversal := o.traversal
	if traversal == nil {
		if traversal, err = document.ParsePath(cfg.TraversalPaths); err != nil {
			return nil, err
		}
	}

	dsn := cfg.DSN()
	p, err := pool.New(ctx, func() (*sql.DB, error) { return engine.OpenDialect(dialect, dsn) }, pool.Config{
		MaxConns:       cfg.MaxConnections,
		AcquireTimeout: cfg.AcquireTimeout,
		ConnectTimeout: cfg.ConnectTimeout,
		DryRun:         cfg.DryRun,
	})
	if err != nil {
		return nil, fmt.Errorf("store: connect %s: %w", cfg, err)
	}

	s := &Store{
		cfg:       *cfg,
		dialect:   dialect,
		pool:      p,
		codec:     payload.Codec{Compression: compression},
		dtype:     dtype,
		traversal: traversal,
		logger:    o.logger.With("table", cfg.Table),
		upsertSQL: dialect.Upsert(cfg.Table),
		lookupSQL: dialect.Lookup(cfg.Table),
		countSQL:  dialect.Count(cfg.Table),
	}
	if !cfg.DryRun {
		if err := s.ensureSchema(ctx); err != nil {
			_ = p.Close()
			return nil, err
		}
	}
	s.logger.InfoContext(ctx, "document store ready",
		"target", cfg.String(),
		"max_connections", p.Max(),
		"dry_run", cfg.DryRun,
		"dump_dtype", dtype,
	)
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	return s.pool.With(ctx, func(ctx context.Context, conn *pool.Conn) error {
		if _, err := conn.ExecContext(ctx, s.dialect.CreateTable(s.cfg.Table)); err != nil {
			return fmt.Errorf("store: create table %s: %w", s.cfg.Table, err)
		}
		return nil
	})
}

// DefaultOptions returns the configured per-call defaults.
func (s *Store) DefaultOptions() Options {
	return Options{Traversal: s.traversal, ReturnEmbeddings: s.cfg.ReturnEmbeddings}
}

func (s *Store) traverse(batch []*document.Document, opts Options) []*document.Document {
	if len(batch) == 0 {
		return nil
	}
	t := opts.Traversal
	if t == nil {
		t = s.traversal
	}
	return t(batch)
}

// Add upserts every node selected from batch by opts.Traversal. The batch is
// written under one pooled connection, released once all rows are written or
// the first unrecoverable error occurs.
//
// Nodes that cannot be written (no id, serialisation failure, statement
// error) are reported in AddResult.Failed and the rest of the batch is still
// written. Pool errors, cancellation and broken connections abort the call
// and are returned; on abort the result reports what was written so far.
func (s *Store) Add(ctx context.Context, batch []*document.Document, opts Options) (*AddResult, error) {
	nodes := s.traverse(batch, opts)
	result := &AddResult{Total: len(nodes)}
	if len(nodes) == 0 {
		return result, nil
	}
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Release(conn)

	if conn.Dry() {
		result.DryRun = true
		result.Written = len(nodes)
		return result, nil
	}

	stmt, err := conn.PrepareContext(ctx, s.upsertSQL)
	if err != nil {
		return nil, fmt.Errorf("store: prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i, node := range nodes {
		if err := s.upsert(ctx, stmt, node); err != nil {
			if fatal(err) {
				s.logger.ErrorContext(ctx, "add aborted", "index", i, "id", node.ID, "written", result.Written, "error", err)
				return result, fmt.Errorf("store: add aborted at record %d: %w", i, err)
			}
			s.logger.WarnContext(ctx, "record write failed", "index", i, "id", node.ID, "error", err)
			result.Failed = append(result.Failed, &RecordError{Index: i, ID: node.ID, Err: err})
			continue
		}
		result.Written++
	}
	s.logAdd(ctx, result)
	return result, nil
}

func (s *Store) upsert(ctx context.Context, stmt *sql.Stmt, node *document.Document) error {
	if node.ID == "" {
		return ErrMissingID
	}
	emb, err := vector.EncodeEmbedding(node.Embedding, s.dtype)
	if err != nil {
		return err
	}
	blob, err := s.codec.Marshal(node)
	if err != nil {
		return err
	}
	var embArg any
	if emb != nil {
		embArg = emb
	}
	_, err = stmt.ExecContext(ctx, node.ID, embArg, blob)
	return err
}

// Lookup reads the rows for ids over one pooled connection. Hits are returned
// in ids order; a missing row is a Hit with Found unset, and a row that
// cannot be read carries Hit.Err. Neither stops the remaining lookups.
func (s *Store) Lookup(ctx context.Context, ids []string) ([]Hit, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	hits := make([]Hit, len(ids))
	for i, id := range ids {
		hits[i].ID = id
	}
	err := s.pool.With(ctx, func(ctx context.Context, conn *pool.Conn) error {
		if conn.Dry() {
			return nil
		}
		stmt, err := conn.PrepareContext(ctx, s.lookupSQL)
		if err != nil {
			return fmt.Errorf("store: prepare lookup: %w", err)
		}
		defer stmt.Close()

		for i := range hits {
			if hits[i].ID == "" {
				continue
			}
			var emb, blob []byte
			err := stmt.QueryRowContext(ctx, hits[i].ID).Scan(&emb, &blob)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				continue
			case err != nil && fatal(err):
				return fmt.Errorf("store: lookup aborted at %q: %w", hits[i].ID, err)
			case err != nil:
				hits[i].Err = err
				continue
			}
			doc, err := s.decode(hits[i].ID, emb, blob)
			if err != nil {
				hits[i].Err = err
				continue
			}
			hits[i].Found = true
			hits[i].Document = doc
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hits, nil
}

func (s *Store) decode(id string, emb, blob []byte) (*document.Document, error) {
	doc, err := s.codec.Unmarshal(blob)
	if err != nil {
		return nil, err
	}
	if doc.Embedding, err = vector.DecodeEmbedding(emb, s.dtype); err != nil {
		return nil, err
	}
	doc.ID = id
	return doc, nil
}

// Search hydrates, in place, the nodes selected from batch by opts.Traversal.
// Found nodes take their content from the stored payload and their embedding
// only when opts.ReturnEmbeddings is set. Nodes without a row keep their id
// and have every other field cleared. A node keeps the caller's chunks when
// any of them is itself selected; otherwise a found node takes the stored
// chunks.
// A dry-run store leaves the batch untouched.
func (s *Store) Search(ctx context.Context, batch []*document.Document, opts Options) (*SearchResult, error) {
	nodes := s.traverse(batch, opts)
	result := &SearchResult{}
	if len(nodes) == 0 {
		return result, nil
	}
	ids := make([]string, len(nodes))
	targets := make(map[*document.Document]bool, len(nodes))
	for i, node := range nodes {
		ids[i] = node.ID
		targets[node] = true
	}
	hits, err := s.Lookup(ctx, ids)
	if err != nil {
		return nil, err
	}
	result.Hits = hits
	if !s.Initialized() {
		return result, nil
	}
	for i, hit := range hits {
		node := nodes[i]
		chunks := node.Chunks
		switch {
		case hit.Err != nil:
			node.Reset()
			result.Failed = append(result.Failed, &RecordError{Index: i, ID: hit.ID, Err: hit.Err})
		case hit.Found:
			if !opts.ReturnEmbeddings {
				hit.Document.ClearEmbeddings()
			}
			node.Apply(hit.Document, opts.ReturnEmbeddings)
			result.Found++
		default:
			node.Reset()
			result.Missing = append(result.Missing, hit.ID)
		}
		if holdsTarget(chunks, targets) {
			node.Chunks = chunks
		}
	}
	s.logSearch(ctx, result)
	return result, nil
}

// holdsTarget reports whether any node in chunks, at any depth, is selected.
func holdsTarget(chunks []*document.Document, targets map[*document.Document]bool) bool {
	for _, chunk := range chunks {
		if chunk == nil {
			continue
		}
		if targets[chunk] || holdsTarget(chunk.Chunks, targets) {
			return true
		}
	}
	return false
}

// Size returns the table row count. A dry-run store is always empty.
func (s *Store) Size(ctx context.Context) (int, error) {
	var n int
	err := s.pool.With(ctx, func(ctx context.Context, conn *pool.Conn) error {
		if conn.Dry() {
			return nil
		}
		if err := conn.QueryRowContext(ctx, s.countSQL).Scan(&n); err != nil {
			return fmt.Errorf("store: count %s: %w", s.cfg.Table, err)
		}
		return nil
	})
	return n, err
}

// Close releases every pooled connection. It is safe to call more than once.
func (s *Store) Close() error {
	if s.pool.Closed() {
		return nil
	}
	s.logger.Info("closing document store")
	return s.pool.Close()
}

// Initialized reports whether the store is backed by a real connection pool.
// It is false in dry-run mode.
func (s *Store) Initialized() bool { return s.pool != nil && !s.pool.DryRun() }

// DumpDType returns the dtype embeddings are stored with.
func (s *Store) DumpDType() vector.DType { return s.dtype }

// Table returns the table name.
func (s *Store) Table() string { return s.cfg.Table }
