package store

import (
	"errors"

	"github.com/viant/docstore/document"
)

// AddResult summarises an Add call.
type AddResult struct {
	// Total is the number of nodes selected by the traversal.
	Total int
	// Written counts successful upserts.
	Written int
	// Failed holds one entry per node that could not be written.
	Failed []*RecordError
	// DryRun is set when nothing was persisted because the store runs dry.
	DryRun bool
}

// Partial reports whether some, but not necessarily all, records failed.
func (r *AddResult) Partial() bool { return r != nil && len(r.Failed) > 0 }

// Err joins the record errors, or returns nil when every record was written.
func (r *AddResult) Err() error {
	if r == nil || len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failed))
	for i, f := range r.Failed {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Hit is the outcome of looking up a single id.
type Hit struct {
	ID string
	// Found is false when no row exists for ID. A miss is not an error.
	Found bool
	// Document is the decoded row, embedding included, when Found.
	Document *document.Document
	// Err is set when the row exists but could not be read or decoded.
	Err error
}

// SearchResult summarises a Search call. Hits are in traversal order.
type SearchResult struct {
	Hits    []Hit
	Found   int
	Missing []string
	Failed  []*RecordError
}
