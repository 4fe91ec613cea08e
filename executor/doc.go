// Package executor is the request-dispatch layer over a document store. It
// resolves per-request parameters into store options and exposes the store
// over HTTP.
package executor
