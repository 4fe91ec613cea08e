package executor

import (
	"context"

	"github.com/viant/docstore/document"
	"github.com/viant/docstore/store"
)

// Reader dispatches add and search requests to a store using the store
// defaults unless a request overrides them.
type Reader struct {
	store    *store.Store
	defaults store.Options
}

// NewReader creates a reader over s.
func NewReader(s *store.Store) *Reader {
	return &Reader{store: s, defaults: s.DefaultOptions()}
}

// Search hydrates docs in place. Nil docs is a no-op.
func (r *Reader) Search(ctx context.Context, docs []*document.Document, params Parameters) (*store.SearchResult, error) {
	if docs == nil {
		return &store.SearchResult{}, nil
	}
	opts, err := params.Resolve(r.defaults)
	if err != nil {
		return nil, err
	}
	return r.store.Search(ctx, docs, opts)
}

// Add persists docs. Nil docs is a no-op.
func (r *Reader) Add(ctx context.Context, docs []*document.Document, params Parameters) (*store.AddResult, error) {
	if docs == nil {
		return &store.AddResult{}, nil
	}
	opts, err := params.Resolve(r.defaults)
	if err != nil {
		return nil, err
	}
	return r.store.Add(ctx, docs, opts)
}

// Size returns the number of stored records.
func (r *Reader) Size(ctx context.Context) (int, error) {
	return r.store.Size(ctx)
}

// Store returns the underlying store.
func (r *Reader) Store() *store.Store { return r.store }

// Close closes the underlying store.
func (r *Reader) Close() error {
	return r.store.Close()
}
