package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/docstore/config"
	"github.com/viant/docstore/document"
	"github.com/viant/docstore/store"
)

func newReader(t *testing.T, mutate func(cfg *config.Config)) *Reader {
	t.Helper()
	cfg := config.Default()
	cfg.Driver = "sqlite"
	cfg.Path = filepath.Join(t.TempDir(), "docs.db")
	cfg.Table = "docs"
	if mutate != nil {
		mutate(cfg)
	}
	s, err := store.New(context.Background(), cfg)
	require.NoError(t, err)
	r := NewReader(s)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestReader_NilDocs(t *testing.T) {
	r := newReader(t, nil)
	ctx := context.Background()

	added, err := r.Add(ctx, nil, Parameters{})
	require.NoError(t, err)
	assert.Equal(t, 0, added.Total)

	found, err := r.Search(ctx, nil, Parameters{})
	require.NoError(t, err)
	assert.Empty(t, found.Hits)

	n, err := r.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestHandler_AddSearchSize(t *testing.T) {
	h := NewHandler(newReader(t, nil), nil)

	root := &document.Document{ID: "root", Text: "hello", Embedding: []float64{1, 2}}
	root.AddChunk(&document.Document{ID: "chunk", Text: "part", Embedding: []float64{3, 4}})
	rec := do(t, h, http.MethodPost, "/add", Request{
		Docs:       []*document.Document{root},
		Parameters: Parameters{TraversalPaths: strPtr("@r,c")},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var added AddResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &added))
	assert.Equal(t, 2, added.Written)

	rec = do(t, h, http.MethodGet, "/size", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var size SizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &size))
	assert.Equal(t, 2, size.Size)

	body := []byte(`{"docs":[{"id":"chunk"},{"id":"nope"}],"parameters":{"return_embeddings":false}}`)
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var found SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	require.Len(t, found.Docs, 2)
	assert.Equal(t, 1, found.Found)
	assert.Equal(t, []string{"nope"}, found.Missing)
	assert.Equal(t, "part", found.Docs[0].Text)
	assert.Equal(t, "root", found.Docs[0].ParentID)
	assert.Nil(t, found.Docs[0].Embedding)
	assert.Equal(t, "nope", found.Docs[1].ID)
	assert.Empty(t, found.Docs[1].Text)
}

func TestHandler_PartialAdd(t *testing.T) {
	h := NewHandler(newReader(t, nil), nil)
	rec := do(t, h, http.MethodPost, "/add", Request{
		Docs: []*document.Document{{ID: "a"}, {Text: "no id"}},
	})
	require.Equal(t, http.StatusMultiStatus, rec.Code, rec.Body.String())
	var added AddResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &added))
	assert.Equal(t, 1, added.Written)
	require.Len(t, added.Failed, 1)
	assert.Equal(t, 1, added.Failed[0].Index)
	assert.Contains(t, added.Failed[0].Error, "no id")
}

func TestHandler_BadRequest(t *testing.T) {
	h := NewHandler(newReader(t, nil), nil)

	rec := do(t, h, http.MethodPost, "/search", map[string]any{
		"docs":       []map[string]any{{"id": "x"}},
		"parameters": map[string]any{"traversal_paths": "@m"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/add", bytes.NewReader([]byte("{")))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, rec.Header().Get(RequestIDHeader), resp.RequestID)
}

func TestHandler_NoDocs(t *testing.T) {
	h := NewHandler(newReader(t, nil), nil)
	rec := do(t, h, http.MethodPost, "/search", map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code)
	var found SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	assert.Empty(t, found.Docs)

	rec = do(t, h, http.MethodPost, "/add", map[string]any{})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_PoolUnavailable(t *testing.T) {
	r := newReader(t, func(cfg *config.Config) {
		cfg.MaxConnections = 1
		cfg.AcquireTimeout = 20 * time.Millisecond
	})
	h := NewHandler(r, nil)
	require.NoError(t, r.Close())

	rec := do(t, h, http.MethodGet, "/size", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	rec = do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	rec = do(t, h, http.MethodPost, "/add", Request{Docs: []*document.Document{{ID: "a"}}})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandler_Health(t *testing.T) {
	h := NewHandler(newReader(t, nil), nil)
	rec := do(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.True(t, health.Initialized)
}

func TestHandler_RequestID(t *testing.T) {
	h := NewHandler(newReader(t, nil), nil)

	rec := do(t, h, http.MethodGet, "/health", nil)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc123", rec.Header().Get(RequestIDHeader))
}

func strPtr(s string) *string { return &s }
