package vector

import (
	"fmt"
	"strings"
)

// DType names the numeric precision used to dump embeddings into the
// embedding column.
type DType string

const (
	Float32 DType = "float32"
	Float64 DType = "float64"
)

// DefaultDType matches the precision of in-memory embeddings, so a
// write/read cycle is bit-exact.
const DefaultDType = Float64

// ParseDType resolves a dtype name. Numpy-style aliases ("f4", "f8",
// "double") are accepted.
func ParseDType(name string) (DType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "float64", "f8", "double":
		return Float64, nil
	case "float32", "f4", "float", "single":
		return Float32, nil
	}
	return "", fmt.Errorf("vector: unsupported dtype %q", name)
}

// Size returns the width in bytes of a single component.
func (d DType) Size() int {
	switch d {
	case Float32:
		return 4
	case Float64:
		return 8
	}
	return 0
}

// Valid reports whether d is a supported dtype.
func (d DType) Valid() bool { return d.Size() > 0 }

func (d DType) String() string { return string(d) }
