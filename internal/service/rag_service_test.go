package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeqa/internal/chunker"
	"resumeqa/internal/domain"
	"resumeqa/internal/embedding/tfidf"
	"resumeqa/internal/logger"
	"resumeqa/internal/metrics"
	"resumeqa/internal/summarizer"
	"resumeqa/internal/vectorstore/memory"
)

type stubCompleter struct {
	mu      sync.Mutex
	answer  string
	err     error
	prompts []string
}

func (c *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
	return c.answer, c.err
}

func (c *stubCompleter) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.prompts)
}

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newService(t *testing.T, size, overlap int, opts ...Option) *RAGService {
	t.Helper()
	ch, err := chunker.NewWindowChunker(size, overlap)
	require.NoError(t, err)
	opts = append([]Option{WithLogger(logger.NewLogger(logger.TestConfig()))}, opts...)
	svc, err := NewRAGService(ch, tfidf.NewEmbedder(), memory.NewStorage(), opts...)
	require.NoError(t, err)
	return svc
}

const catDoc = "A cat sat. A dog ran. A bird flew."

func TestRAGService_Ingest(t *testing.T) {
	t.Run("Should index the document once", func(t *testing.T) {
		svc := newService(t, 12, 4)
		path := writeDoc(t, catDoc)

		require.NoError(t, svc.Ingest(path))

		assert.True(t, svc.IsIndexed())
		assert.Equal(t, 4, svc.ChunkCount())
		assert.Error(t, svc.Ingest(path))
	})

	t.Run("Should fail with ErrSourceNotFound for a missing path", func(t *testing.T) {
		svc := newService(t, 12, 4)
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "cv.txt"), []byte("x"), 0o644))

		err := svc.Ingest(filepath.Join(dir, "resume.txt"))

		require.ErrorIs(t, err, domain.ErrSourceNotFound)
		assert.Contains(t, err.Error(), "cv.txt")
		assert.False(t, svc.IsIndexed())
	})

	t.Run("Should fail with ErrEmptyDocument when no chunks are produced", func(t *testing.T) {
		svc := newService(t, 12, 4)

		err := svc.Ingest(writeDoc(t, "   \n"))

		require.ErrorIs(t, err, domain.ErrEmptyDocument)
		assert.False(t, svc.IsIndexed())
	})

	t.Run("Should compute an overview when a summarizer is set", func(t *testing.T) {
		svc := newService(t, 100, 10, WithSummarizer(summarizer.NewFrequencySummarizer(), 1))

		require.NoError(t, svc.Ingest(writeDoc(t, "Go engineer. Go mentor. Chess.")))

		assert.NotEmpty(t, svc.Summary())
	})

	t.Run("Should publish the chunk gauge", func(t *testing.T) {
		m := metrics.New()
		svc := newService(t, 12, 4, WithMetrics(m))

		require.NoError(t, svc.Ingest(writeDoc(t, catDoc)))
		assert.Equal(t, 4, svc.ChunkCount())
	})
}

func TestRAGService_Search(t *testing.T) {
	t.Run("Should fail with ErrNotIndexed before ingest", func(t *testing.T) {
		svc := newService(t, 12, 4)

		_, err := svc.Search("cat", 3)

		assert.ErrorIs(t, err, domain.ErrNotIndexed)
	})

	t.Run("Should rank the chunk containing the query term first", func(t *testing.T) {
		svc := newService(t, 12, 4)
		require.NoError(t, svc.Ingest(writeDoc(t, catDoc)))

		texts, err := svc.Search("cat", 3)
		require.NoError(t, err)

		require.Len(t, texts, 3)
		assert.Equal(t, "A cat sat. A", texts[0])
	})

	t.Run("Should return the first k chunks in order for an empty query", func(t *testing.T) {
		svc := newService(t, 12, 4)
		require.NoError(t, svc.Ingest(writeDoc(t, catDoc)))

		results, err := svc.SearchScored("", 2)
		require.NoError(t, err)

		require.Len(t, results, 2)
		assert.Equal(t, 0, results[0].Chunk.Index)
		assert.Equal(t, 1, results[1].Chunk.Index)
		assert.Zero(t, results[0].Score)
	})

	t.Run("Should ignore terms that are not in the vocabulary", func(t *testing.T) {
		svc := newService(t, 12, 4)
		require.NoError(t, svc.Ingest(writeDoc(t, catDoc)))

		results, err := svc.SearchScored("zebra giraffe", 4)
		require.NoError(t, err)

		for i, r := range results {
			assert.Equal(t, i, r.Chunk.Index)
			assert.Zero(t, r.Score)
		}
	})

	t.Run("Should return every chunk when k exceeds the chunk count", func(t *testing.T) {
		svc := newService(t, 12, 4)
		require.NoError(t, svc.Ingest(writeDoc(t, catDoc)))

		texts, err := svc.Search("bird", 50)
		require.NoError(t, err)
		assert.Len(t, texts, 4)
	})

	t.Run("Should use the configured default when k is not positive", func(t *testing.T) {
		svc := newService(t, 12, 4, WithTopK(2))
		require.NoError(t, svc.Ingest(writeDoc(t, catDoc)))

		texts, err := svc.Search("bird", 0)
		require.NoError(t, err)
		assert.Len(t, texts, 2)
	})

	t.Run("Should rank a chunk first when queried with its own text", func(t *testing.T) {
		content := strings.Join([]string{
			"Senior backend engineer building payment systems in Go and Postgres.",
			"Led a platform team migrating services onto Kubernetes and Terraform.",
			"Published research on natural language processing and retrieval.",
			"Volunteer mentor teaching Python to high school students on weekends.",
		}, " ")
		svc := newService(t, 80, 20)
		require.NoError(t, svc.Ingest(writeDoc(t, content)))
		chunks := svc.index.Load().Chunks()

		for _, ch := range chunks {
			results, err := svc.SearchScored(ch.Text, len(chunks))
			require.NoError(t, err)
			require.Len(t, results, len(chunks))
			assert.Equal(t, ch.Index, results[0].Chunk.Index, "query %q", ch.Text)
			for _, r := range results {
				assert.Contains(t, chunks, r.Chunk)
			}
		}
	})

	t.Run("Should serve concurrent queries", func(t *testing.T) {
		svc := newService(t, 12, 4)
		require.NoError(t, svc.Ingest(writeDoc(t, catDoc)))

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				texts, err := svc.Search("dog", 1)
				assert.NoError(t, err)
				assert.Equal(t, []string{"t. A dog ran"}, texts)
			}()
		}
		wg.Wait()
	})
}

func TestRAGService_Ask(t *testing.T) {
	t.Run("Should send retrieved context and the question to the model", func(t *testing.T) {
		completer := &stubCompleter{answer: "A cat sat."}
		svc := newService(t, 12, 4, WithCompleter(completer))
		require.NoError(t, svc.Ingest(writeDoc(t, catDoc)))

		answer, err := svc.Ask(context.Background(), "What did the cat do?", 2)
		require.NoError(t, err)

		assert.Equal(t, "What did the cat do?", answer.Query)
		assert.Equal(t, "A cat sat.", answer.Response)
		require.Len(t, answer.Chunks, 2)
		assert.Equal(t, 0, answer.Chunks[0].Index)
		require.Len(t, completer.prompts, 1)
		assert.Contains(t, completer.prompts[0], "A cat sat. A\n\n")
		assert.Contains(t, completer.prompts[0], "Question: What did the cat do?")
	})

	t.Run("Should fail with ErrNotIndexed before ingest", func(t *testing.T) {
		completer := &stubCompleter{answer: "x"}
		svc := newService(t, 12, 4, WithCompleter(completer))

		_, err := svc.Ask(context.Background(), "cat", 1)

		require.ErrorIs(t, err, domain.ErrNotIndexed)
		assert.Zero(t, completer.calls())
	})

	t.Run("Should surface model failures", func(t *testing.T) {
		boom := errors.New("upstream unavailable")
		svc := newService(t, 12, 4, WithCompleter(&stubCompleter{err: boom}))
		require.NoError(t, svc.Ingest(writeDoc(t, catDoc)))

		_, err := svc.Ask(context.Background(), "cat", 1)

		assert.ErrorIs(t, err, boom)
	})

	t.Run("Should fail without a model", func(t *testing.T) {
		svc := newService(t, 12, 4)
		require.NoError(t, svc.Ingest(writeDoc(t, catDoc)))

		_, err := svc.Ask(context.Background(), "cat", 1)

		assert.ErrorIs(t, err, errNoCompleter)
	})

	t.Run("Should answer repeated questions from the cache", func(t *testing.T) {
		completer := &stubCompleter{answer: "Sat."}
		svc := newService(t, 12, 4, WithCompleter(completer), WithAnswerCache(8))
		require.NoError(t, svc.Ingest(writeDoc(t, catDoc)))

		_, err := svc.Ask(context.Background(), "What did the cat do?", 2)
		require.NoError(t, err)
		again, err := svc.Ask(context.Background(), "  what did the  CAT do? ", 2)
		require.NoError(t, err)

		assert.Equal(t, 1, completer.calls())
		assert.Equal(t, "Sat.", again.Response)
		assert.Equal(t, "  what did the  CAT do? ", again.Query)
	})

	t.Run("Should not cache failures", func(t *testing.T) {
		completer := &stubCompleter{err: errors.New("timeout")}
		svc := newService(t, 12, 4, WithCompleter(completer), WithAnswerCache(8))
		require.NoError(t, svc.Ingest(writeDoc(t, catDoc)))

		_, err := svc.Ask(context.Background(), "cat", 1)
		require.Error(t, err)
		_, err = svc.Ask(context.Background(), "cat", 1)
		require.Error(t, err)

		assert.Equal(t, 2, completer.calls())
	})
}
