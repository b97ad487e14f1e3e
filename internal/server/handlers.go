package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	statusHealthy  = "healthy"
	statusNotReady = "not_ready"
)

// QueryRequest is the body accepted by /query and /search. An empty query is
// valid and returns the leading chunks.
type QueryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k" binding:"gte=0"`
}

type QueryResponse struct {
	Query    string `json:"query"`
	Response string `json:"response"`
}

type ChunkResult struct {
	Index int     `json:"index"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

type SearchResponse struct {
	Query  string        `json:"query"`
	Chunks []ChunkResult `json:"chunks"`
}

type HealthResponse struct {
	Status       string `json:"status"`
	Model        string `json:"model"`
	Retriever    string `json:"retriever"`
	ResumeLoaded bool   `json:"resume_loaded"`
	Chunks       int    `json:"chunks"`
}

type handlers struct {
	svc   RAGPort
	model string
}

func (h *handlers) query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	answer, err := h.svc.Ask(c.Request.Context(), req.Query, req.TopK)
	if err != nil {
		respondQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, QueryResponse{Query: req.Query, Response: answer.Response})
}

func (h *handlers) search(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	results, err := h.svc.SearchScored(req.Query, req.TopK)
	if err != nil {
		respondQueryError(c, err)
		return
	}
	chunks := make([]ChunkResult, len(results))
	for i, r := range results {
		chunks[i] = ChunkResult{Index: r.Chunk.Index, Text: r.Chunk.Text, Score: r.Score}
	}
	c.JSON(http.StatusOK, SearchResponse{Query: req.Query, Chunks: chunks})
}

func (h *handlers) health(c *gin.Context) {
	resp := HealthResponse{
		Status:       statusHealthy,
		Model:        h.model,
		Retriever:    "TF-IDF",
		ResumeLoaded: h.svc.IsIndexed(),
		Chunks:       h.svc.ChunkCount(),
	}
	code := http.StatusOK
	if !resp.ResumeLoaded {
		resp.Status = statusNotReady
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}
