// Package payload serialises a document node, minus its own embedding, into
// the opaque payload column. Every payload starts with a one byte header
// naming its compression, so rows written with different settings decode
// side by side.
package payload
