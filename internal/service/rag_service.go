package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"resumeqa/internal/domain"
	"resumeqa/internal/llm"
	"resumeqa/internal/logger"
	"resumeqa/internal/metrics"
)

const (
	DefaultTopK             = 3
	defaultSummarySentences = 3

	opAsk    = "ask"
	opSearch = "search"
)

var errNoCompleter = errors.New("no language model configured")

// RAGService answers questions about a single indexed document. The index is
// published once by Ingest and only read afterwards, so queries may run
// concurrently.
type RAGService struct {
	indexer   indexer
	completer domain.Completer
	cache     *lru.Cache[string, domain.Answer]
	metrics   *metrics.Metrics
	log       logger.Logger
	topK      int

	ingestMu sync.Mutex
	index    atomic.Pointer[Index]
}

// Option configures a RAGService.
type Option func(*RAGService) error

// WithCompleter sets the language model used by Ask.
func WithCompleter(c domain.Completer) Option {
	return func(s *RAGService) error {
		s.completer = c
		return nil
	}
}

// WithAnswerCache keeps up to size answers keyed by normalized question.
// A non-positive size disables the cache.
func WithAnswerCache(size int) Option {
	return func(s *RAGService) error {
		if size <= 0 {
			s.cache = nil
			return nil
		}
		cache, err := lru.New[string, domain.Answer](size)
		if err != nil {
			return err
		}
		s.cache = cache
		return nil
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *RAGService) error {
		s.metrics = m
		return nil
	}
}

func WithLogger(l logger.Logger) Option {
	return func(s *RAGService) error {
		s.log = l
		return nil
	}
}

// WithTopK sets the number of chunks used when callers pass k <= 0.
func WithTopK(k int) Option {
	return func(s *RAGService) error {
		if k > 0 {
			s.topK = k
		}
		return nil
	}
}

// WithSummarizer enables the document overview computed at ingest time.
func WithSummarizer(sum domain.Summarizer, maxSentences int) Option {
	return func(s *RAGService) error {
		s.indexer.summarizer = sum
		s.indexer.summarySentences = maxSentences
		return nil
	}
}

func NewRAGService(
	chunker domain.Chunker,
	embedder domain.Embedder,
	store domain.VectorStore,
	opts ...Option,
) (*RAGService, error) {
	s := &RAGService{
		indexer: indexer{
			chunker:          chunker,
			embedder:         embedder,
			store:            store,
			summarySentences: defaultSummarySentences,
		},
		log:  logger.GetDefault(),
		topK: DefaultTopK,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Ingest indexes the document at path. It runs once; later calls fail.
func (s *RAGService) Ingest(path string) error {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()
	if s.index.Load() != nil {
		return errors.New("document already indexed")
	}
	start := time.Now()
	ix, err := s.indexer.build(path)
	if err != nil {
		return err
	}
	s.index.Store(ix)
	s.metrics.SetIndexedChunks(len(ix.chunks))
	s.log.Info("Indexed document",
		"path", path,
		"chunks", len(ix.chunks),
		"vocabulary", ix.embedder.Dimension(),
		"elapsed", time.Since(start),
	)
	return nil
}

// IsIndexed reports whether Ingest has completed.
func (s *RAGService) IsIndexed() bool {
	return s.index.Load() != nil
}

// ChunkCount returns the number of indexed chunks, or 0 before indexing.
func (s *RAGService) ChunkCount() int {
	if ix := s.index.Load(); ix != nil {
		return len(ix.chunks)
	}
	return 0
}

// Summary returns the document overview computed at ingest time.
func (s *RAGService) Summary() string {
	if ix := s.index.Load(); ix != nil {
		return ix.summary
	}
	return ""
}

// Search returns the texts of the top k chunks for query.
func (s *RAGService) Search(query string, k int) ([]string, error) {
	results, err := s.SearchScored(query, k)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(results))
	for i := range results {
		texts[i] = results[i].Chunk.Text
	}
	return texts, nil
}

// SearchScored is Search with similarity scores. k <= 0 selects the
// configured default; k larger than the chunk count returns every chunk.
func (s *RAGService) SearchScored(query string, k int) ([]domain.SearchResult, error) {
	start := time.Now()
	results, err := s.search(query, k)
	s.metrics.ObserveQuery(opSearch, outcome(err), time.Since(start))
	return results, err
}

func (s *RAGService) search(query string, k int) ([]domain.SearchResult, error) {
	ix := s.index.Load()
	if ix == nil {
		return nil, domain.ErrNotIndexed
	}
	return ix.search(query, s.resolveK(k))
}

// Ask retrieves context for query and asks the language model for an answer
// grounded in it.
func (s *RAGService) Ask(ctx context.Context, query string, k int) (domain.Answer, error) {
	start := time.Now()
	answer, hit, err := s.ask(ctx, query, s.resolveK(k))
	switch {
	case hit:
		s.metrics.ObserveQuery(opAsk, metrics.OutcomeCacheHit, time.Since(start))
	default:
		s.metrics.ObserveQuery(opAsk, outcome(err), time.Since(start))
	}
	if err != nil {
		logger.FromContext(ctx).Error("Failed to answer query", "error", err)
		return domain.Answer{}, err
	}
	return answer, nil
}

func (s *RAGService) ask(ctx context.Context, query string, k int) (domain.Answer, bool, error) {
	key := cacheKey(query, k)
	if s.cache != nil && s.IsIndexed() {
		if cached, ok := s.cache.Get(key); ok {
			cached.Query = query
			return cached, true, nil
		}
	}
	if s.completer == nil {
		return domain.Answer{}, false, errNoCompleter
	}
	results, err := s.search(query, k)
	if err != nil {
		return domain.Answer{}, false, err
	}
	chunks := make([]domain.Chunk, len(results))
	texts := make([]string, len(results))
	for i := range results {
		chunks[i] = results[i].Chunk
		texts[i] = results[i].Chunk.Text
	}
	prompt, err := llm.BuildPrompt(llm.JoinContext(texts), query)
	if err != nil {
		return domain.Answer{}, false, err
	}
	response, err := s.completer.Complete(ctx, prompt)
	s.metrics.ObserveLLM(outcome(err))
	if err != nil {
		return domain.Answer{}, false, err
	}
	answer := domain.Answer{Query: query, Response: response, Chunks: chunks}
	if s.cache != nil {
		s.cache.Add(key, answer)
	}
	return answer, false, nil
}

func (s *RAGService) resolveK(k int) int {
	if k <= 0 {
		return s.topK
	}
	return k
}

func cacheKey(query string, k int) string {
	return strconv.Itoa(k) + "|" + strings.ToLower(strings.Join(strings.Fields(query), " "))
}

func outcome(err error) string {
	if err != nil {
		return metrics.OutcomeError
	}
	return metrics.OutcomeOK
}
