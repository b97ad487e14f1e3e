package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeqa/internal/domain"
	"resumeqa/internal/logger"
	"resumeqa/internal/metrics"
)

type fakeRAG struct {
	indexed   bool
	answer    string
	err       error
	results   []domain.SearchResult
	lastQuery string
	lastK     int
}

func (f *fakeRAG) Ask(_ context.Context, query string, k int) (domain.Answer, error) {
	f.lastQuery, f.lastK = query, k
	if f.err != nil {
		return domain.Answer{}, f.err
	}
	return domain.Answer{Query: query, Response: f.answer}, nil
}

func (f *fakeRAG) SearchScored(query string, k int) ([]domain.SearchResult, error) {
	f.lastQuery, f.lastK = query, k
	return f.results, f.err
}

func (f *fakeRAG) IsIndexed() bool { return f.indexed }

func (f *fakeRAG) ChunkCount() int {
	if f.indexed {
		return 4
	}
	return 0
}

func newTestRouter(svc RAGPort, m *metrics.Metrics) *gin.Engine {
	gin.SetMode(gin.TestMode)
	opts := Options{Model: "llama3-70b-8192", Logger: logger.NewLogger(logger.TestConfig())}
	if m != nil {
		opts.Metrics = m.Handler()
	}
	return NewRouter(svc, opts)
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)
	return rec
}

func TestQueryEndpoint(t *testing.T) {
	t.Run("Should answer a question", func(t *testing.T) {
		svc := &fakeRAG{indexed: true, answer: "Five years of Go."}
		rec := do(newTestRouter(svc, nil), http.MethodPost, "/query", `{"query":"How much Go?"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var body QueryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, QueryResponse{Query: "How much Go?", Response: "Five years of Go."}, body)
		assert.Equal(t, 0, svc.lastK)
		assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	})

	t.Run("Should forward top_k", func(t *testing.T) {
		svc := &fakeRAG{indexed: true}
		rec := do(newTestRouter(svc, nil), http.MethodPost, "/query", `{"query":"q","top_k":5}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 5, svc.lastK)
	})

	t.Run("Should reject malformed bodies", func(t *testing.T) {
		rec := do(newTestRouter(&fakeRAG{indexed: true}, nil), http.MethodPost, "/query", `{"query":`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, ErrBadRequestCode, body.Code)
	})

	t.Run("Should reject a negative top_k", func(t *testing.T) {
		rec := do(newTestRouter(&fakeRAG{indexed: true}, nil), http.MethodPost, "/query", `{"query":"q","top_k":-1}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Should return 503 before indexing", func(t *testing.T) {
		svc := &fakeRAG{err: domain.ErrNotIndexed}
		rec := do(newTestRouter(svc, nil), http.MethodPost, "/query", `{"query":"q"}`)

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), ErrServiceUnavailableCode)
	})

	t.Run("Should return 500 with detail when answering fails", func(t *testing.T) {
		svc := &fakeRAG{indexed: true, err: errors.New("llm completion: timeout")}
		rec := do(newTestRouter(svc, nil), http.MethodPost, "/query", `{"query":"q"}`)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Error processing query: llm completion: timeout", body.Detail)
	})

	t.Run("Should echo a caller supplied request id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"query":"q"}`))
		req.Header.Set(requestIDHeader, "abc-123")
		newTestRouter(&fakeRAG{indexed: true}, nil).ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
	})
}

func TestSearchEndpoint(t *testing.T) {
	t.Run("Should return ranked chunks with scores", func(t *testing.T) {
		svc := &fakeRAG{indexed: true, results: []domain.SearchResult{
			{Chunk: domain.Chunk{Index: 2, Text: "Go at Acme"}, Score: 0.9},
			{Chunk: domain.Chunk{Index: 0, Text: "Summary"}, Score: 0.1},
		}}
		rec := do(newTestRouter(svc, nil), http.MethodPost, "/search", `{"query":"go","top_k":2}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var body SearchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "go", body.Query)
		assert.Equal(t, []ChunkResult{{Index: 2, Text: "Go at Acme", Score: 0.9}, {Index: 0, Text: "Summary", Score: 0.1}}, body.Chunks)
	})
}

func TestHealthEndpoint(t *testing.T) {
	t.Run("Should report healthy once indexed", func(t *testing.T) {
		rec := do(newTestRouter(&fakeRAG{indexed: true}, nil), http.MethodGet, "/health", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var body HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, HealthResponse{
			Status:       statusHealthy,
			Model:        "llama3-70b-8192",
			Retriever:    "TF-IDF",
			ResumeLoaded: true,
			Chunks:       4,
		}, body)
	})

	t.Run("Should report not ready before indexing", func(t *testing.T) {
		rec := do(newTestRouter(&fakeRAG{}, nil), http.MethodGet, "/health", "")

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"resume_loaded":false`)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	t.Run("Should expose metrics when configured", func(t *testing.T) {
		m := metrics.New()
		m.SetIndexedChunks(3)
		rec := do(newTestRouter(&fakeRAG{indexed: true}, m), http.MethodGet, "/metrics", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "resumeqa_indexed_chunks 3")
	})

	t.Run("Should not register metrics otherwise", func(t *testing.T) {
		rec := do(newTestRouter(&fakeRAG{indexed: true}, nil), http.MethodGet, "/metrics", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
