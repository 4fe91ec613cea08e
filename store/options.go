package store

import (
	"log/slog"

	"github.com/viant/docstore/document"
)

// Options are the per-call settings of Add and Search, resolved by the
// caller before the call. A nil Traversal selects the store default, but
// ReturnEmbeddings is taken as given: the zero value suppresses embeddings
// even when the configured default returns them. Start from
// Store.DefaultOptions to inherit both defaults.
type Options struct {
	Traversal        document.Traversal
	ReturnEmbeddings bool
}

type options struct {
	logger    *slog.Logger
	traversal document.Traversal
}

// Option configures New.
type Option func(*options)

// WithLogger sets the structured logger. If nil, slog.Default is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTraversal replaces the default traversal parsed from the configured
// traversal path.
func WithTraversal(t document.Traversal) Option {
	return func(o *options) {
		o.traversal = t
	}
}
