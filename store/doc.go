// Package store implements the document store: schema-aware upserts and point
// lookups of document nodes keyed by id, over a bounded connection pool.
//
// A batch of document trees is first flattened with a document.Traversal;
// Add then upserts every selected node under a single pooled connection and
// Search hydrates the selected nodes from their stored rows. Per-record
// failures are collected rather than aborting the batch; pool failures
// (pool.ErrPoolExhausted, pool.ErrPoolClosed) always propagate.
package store
