package executor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/docstore/document"
	"github.com/viant/docstore/store"
)

func TestParametersFromMap(t *testing.T) {
	testCases := []struct {
		description string
		input       map[string]any
		path        string
		embeddings  *bool
		expectErr   bool
	}{
		{description: "empty", input: map[string]any{}},
		{description: "string path", input: map[string]any{"traversal_paths": "@c"}, path: "@c"},
		{description: "list path", input: map[string]any{"traversal_paths": []any{"r", "c"}}, path: "r,c"},
		{description: "bool flag", input: map[string]any{"return_embeddings": false}, embeddings: boolPtr(false)},
		{description: "string flag", input: map[string]any{"return_embeddings": "true"}, embeddings: boolPtr(true)},
		{description: "bad flag", input: map[string]any{"return_embeddings": 3}, expectErr: true},
		{description: "bad path item", input: map[string]any{"traversal_paths": []any{"r", 1}}, expectErr: true},
		{description: "null values", input: map[string]any{"traversal_paths": nil, "return_embeddings": nil}},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			p, err := ParametersFromMap(tc.input)
			if tc.expectErr {
				assert.ErrorIs(t, err, ErrBadParameters)
				return
			}
			require.NoError(t, err)
			if tc.path == "" {
				assert.Nil(t, p.TraversalPaths)
			} else {
				require.NotNil(t, p.TraversalPaths)
				assert.Equal(t, tc.path, *p.TraversalPaths)
			}
			assert.Equal(t, tc.embeddings, p.ReturnEmbeddings)
		})
	}
}

func TestParameters_Resolve(t *testing.T) {
	defaults := store.Options{Traversal: document.Roots, ReturnEmbeddings: true}
	root := &document.Document{ID: "r"}
	root.AddChunk(&document.Document{ID: "c1"})
	root.AddChunk(&document.Document{ID: "c2"})

	var p Parameters
	require.NoError(t, json.Unmarshal([]byte(`{"traversal_paths":"@c","return_embeddings":false}`), &p))
	opts, err := p.Resolve(defaults)
	require.NoError(t, err)
	assert.False(t, opts.ReturnEmbeddings)
	assert.Len(t, opts.Traversal([]*document.Document{root}), 2)

	opts, err = Parameters{}.Resolve(defaults)
	require.NoError(t, err)
	assert.True(t, opts.ReturnEmbeddings)
	assert.Len(t, opts.Traversal([]*document.Document{root}), 1)

	bad := "@m"
	_, err = Parameters{TraversalPaths: &bad}.Resolve(defaults)
	assert.ErrorIs(t, err, ErrBadParameters)
}

func boolPtr(b bool) *bool { return &b }
