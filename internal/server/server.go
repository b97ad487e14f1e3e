package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeqa/internal/domain"
	"resumeqa/internal/logger"
)

// RAGPort is the subset of the RAG service the HTTP API depends on.
type RAGPort interface {
	Ask(ctx context.Context, query string, k int) (domain.Answer, error)
	SearchScored(query string, k int) ([]domain.SearchResult, error)
	IsIndexed() bool
	ChunkCount() int
}

// Options configures the router.
type Options struct {
	Model   string
	Logger  logger.Logger
	Metrics http.Handler
}

// NewRouter builds the HTTP API:
//
//	POST /query   answer a question with the language model
//	POST /search  retrieval only
//	GET  /health  readiness
//	GET  /metrics Prometheus metrics, when configured
func NewRouter(svc RAGPort, opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = logger.GetDefault()
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestContext(log), accessLog())
	h := &handlers{svc: svc, model: opts.Model}
	r.POST("/query", h.query)
	r.POST("/search", h.search)
	r.GET("/health", h.health)
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}
	return r
}
