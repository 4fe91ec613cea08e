// Package vector defines the numeric embedding types persisted by docstore:
//   - DType: the configured storage precision (float32 or float64)
//   - EncodeEmbedding/DecodeEmbedding: little-endian BLOB codec
package vector
