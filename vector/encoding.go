package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeEmbedding encodes vec into a BLOB of IEEE 754 values of the given
// dtype, little-endian, without a length prefix; the length is derived from
// the BLOB size on decode. A nil or empty vector encodes to nil so the column
// stays NULL.
func EncodeEmbedding(vec []float64, dtype DType) ([]byte, error) {
	if len(vec) == 0 {
		return nil, nil
	}
	size := dtype.Size()
	if size == 0 {
		return nil, fmt.Errorf("vector: unsupported dtype %q", dtype)
	}
	b := make([]byte, len(vec)*size)
	for i, v := range vec {
		switch dtype {
		case Float32:
			binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(float32(v)))
		case Float64:
			binary.LittleEndian.PutUint64(b[i*8:], math.Float64bits(v))
		}
	}
	return b, nil
}

// DecodeEmbedding decodes a BLOB produced by EncodeEmbedding with the same
// dtype back into float64 values.
func DecodeEmbedding(b []byte, dtype DType) ([]float64, error) {
	if len(b) == 0 {
		return nil, nil
	}
	size := dtype.Size()
	if size == 0 {
		return nil, fmt.Errorf("vector: unsupported dtype %q", dtype)
	}
	if len(b)%size != 0 {
		return nil, fmt.Errorf("vector: invalid embedding blob length %d (not multiple of %d)", len(b), size)
	}
	n := len(b) / size
	vec := make([]float64, n)
	for i := 0; i < n; i++ {
		switch dtype {
		case Float32:
			vec[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:])))
		case Float64:
			vec[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
		}
	}
	return vec, nil
}
