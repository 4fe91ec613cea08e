package executor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/viant/docstore/document"
	"github.com/viant/docstore/store"
)

// ErrBadParameters is returned for parameters that cannot be resolved.
var ErrBadParameters = errors.New("executor: bad parameters")

// Parameters are per-request overrides. A nil field keeps the default.
type Parameters struct {
	TraversalPaths   *string `json:"traversal_paths,omitempty"`
	ReturnEmbeddings *bool   `json:"return_embeddings,omitempty"`
}

// UnmarshalJSON accepts traversal_paths either as "@r,c" or as ["r","c"].
func (p *Parameters) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrBadParameters, err)
	}
	parsed, err := ParametersFromMap(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParametersFromMap reads traversal_paths and return_embeddings from a
// loosely typed parameter map. Unknown keys are ignored.
func ParametersFromMap(m map[string]any) (Parameters, error) {
	var p Parameters
	if v, ok := m["traversal_paths"]; ok && v != nil {
		path, err := pathValue(v)
		if err != nil {
			return p, err
		}
		p.TraversalPaths = &path
	}
	if v, ok := m["return_embeddings"]; ok && v != nil {
		var flag bool
		switch actual := v.(type) {
		case bool:
			flag = actual
		case string:
			parsed, err := strconv.ParseBool(actual)
			if err != nil {
				return p, fmt.Errorf("%w: return_embeddings: %v", ErrBadParameters, err)
			}
			flag = parsed
		default:
			return p, fmt.Errorf("%w: return_embeddings: unsupported type %T", ErrBadParameters, v)
		}
		p.ReturnEmbeddings = &flag
	}
	return p, nil
}

func pathValue(v any) (string, error) {
	switch actual := v.(type) {
	case string:
		return actual, nil
	case []string:
		return strings.Join(actual, ","), nil
	case []any:
		parts := make([]string, len(actual))
		for i, item := range actual {
			s, ok := item.(string)
			if !ok {
				return "", fmt.Errorf("%w: traversal_paths[%d]: unsupported type %T", ErrBadParameters, i, item)
			}
			parts[i] = s
		}
		return strings.Join(parts, ","), nil
	}
	return "", fmt.Errorf("%w: traversal_paths: unsupported type %T", ErrBadParameters, v)
}

// Resolve applies p over defaults.
func (p Parameters) Resolve(defaults store.Options) (store.Options, error) {
	opts := defaults
	if p.TraversalPaths != nil {
		t, err := document.ParsePath(*p.TraversalPaths)
		if err != nil {
			return opts, fmt.Errorf("%w: %v", ErrBadParameters, err)
		}
		opts.Traversal = t
	}
	if p.ReturnEmbeddings != nil {
		opts.ReturnEmbeddings = *p.ReturnEmbeddings
	}
	return opts, nil
}
