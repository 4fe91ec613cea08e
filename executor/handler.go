package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/viant/docstore/document"
	"github.com/viant/docstore/pool"
	"github.com/viant/docstore/store"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

const maxBodyBytes = 64 << 20

// Request is the body of /search and /add.
type Request struct {
	Docs       []*document.Document `json:"docs"`
	Parameters Parameters           `json:"parameters"`
}

// FailedRecord describes a record error in a response.
type FailedRecord struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Error string `json:"error"`
}

// AddResponse is the body returned by /add.
type AddResponse struct {
	Total   int            `json:"total"`
	Written int            `json:"written"`
	Failed  []FailedRecord `json:"failed,omitempty"`
	DryRun  bool           `json:"dry_run,omitempty"`
}

// SearchResponse is the body returned by /search.
type SearchResponse struct {
	Docs    []*document.Document `json:"docs"`
	Found   int                  `json:"found"`
	Missing []string             `json:"missing,omitempty"`
	Failed  []FailedRecord       `json:"failed,omitempty"`
}

// SizeResponse is the body returned by /size.
type SizeResponse struct {
	Size int `json:"size"`
}

// HealthResponse is the body returned by /health.
type HealthResponse struct {
	Status      string `json:"status"`
	Initialized bool   `json:"initialized"`
	Timestamp   string `json:"timestamp"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type handler struct {
	reader *Reader
	logger *slog.Logger
}

// NewHandler exposes reader over HTTP. If logger is nil, slog.Default is used.
func NewHandler(reader *Reader, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{reader: reader, logger: logger}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /search", h.search)
	mux.HandleFunc("POST /add", h.add)
	mux.HandleFunc("GET /size", h.size)
	mux.HandleFunc("GET /health", h.health)
	return h.withRequestID(mux)
}

type requestIDKey struct{}

// RequestID returns the id assigned to the request carried by ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (h *handler) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, reqID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, reqID)))
		h.logger.Info("http request",
			"request_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (h *handler) decode(w http.ResponseWriter, r *http.Request) (*Request, bool) {
	req := &Request{}
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(req); err != nil {
		h.fail(w, r, fmt.Errorf("%w: %v", ErrBadParameters, err))
		return nil, false
	}
	return req, true
}

func (h *handler) search(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	result, err := h.reader.Search(r.Context(), req.Docs, req.Parameters)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	docs := req.Docs
	if docs == nil {
		docs = []*document.Document{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		Docs:    docs,
		Found:   result.Found,
		Missing: result.Missing,
		Failed:  failedRecords(result.Failed),
	})
}

func (h *handler) add(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	result, err := h.reader.Add(r.Context(), req.Docs, req.Parameters)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	status := http.StatusOK
	if result.Partial() {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, AddResponse{
		Total:   result.Total,
		Written: result.Written,
		Failed:  failedRecords(result.Failed),
		DryRun:  result.DryRun,
	})
}

func (h *handler) size(w http.ResponseWriter, r *http.Request) {
	n, err := h.reader.Size(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SizeResponse{Size: n})
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	response := HealthResponse{
		Initialized: h.reader.Store().Initialized(),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := h.reader.Size(ctx); err != nil {
		h.logger.WarnContext(ctx, "health check failed", "request_id", RequestID(r.Context()), "error", err)
		response.Status = "unhealthy"
		writeJSON(w, http.StatusServiceUnavailable, response)
		return
	}
	response.Status = "healthy"
	writeJSON(w, http.StatusOK, response)
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	reqID := RequestID(r.Context())
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed", "request_id", reqID, "path", r.URL.Path, "error", err)
	} else {
		h.logger.WarnContext(r.Context(), "bad request", "request_id", reqID, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), RequestID: reqID})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrBadParameters):
		return http.StatusBadRequest
	case errors.Is(err, pool.ErrPoolExhausted), errors.Is(err, pool.ErrPoolClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func failedRecords(errs []*store.RecordError) []FailedRecord {
	if len(errs) == 0 {
		return nil
	}
	out := make([]FailedRecord, len(errs))
	for i, e := range errs {
		out[i] = FailedRecord{Index: e.Index, ID: e.ID, Error: e.Err.Error()}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
