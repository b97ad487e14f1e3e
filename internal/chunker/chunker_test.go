package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeqa/internal/domain"
)

func TestNew(t *testing.T) {
	t.Run("Should default to the window chunker", func(t *testing.T) {
		c, err := New(Settings{Size: 10, Overlap: 2})
		require.NoError(t, err)
		assert.IsType(t, &WindowChunker{}, c)
	})

	t.Run("Should build each known strategy", func(t *testing.T) {
		c, err := New(Settings{Type: TypeRecursive, Size: 100, Overlap: 10})
		require.NoError(t, err)
		assert.IsType(t, &RecursiveChunker{}, c)

		c, err = New(Settings{Type: TypeSentence, SentencesPerChunk: 2})
		require.NoError(t, err)
		assert.IsType(t, &SentenceChunker{}, c)
	})

	t.Run("Should reject unknown strategies", func(t *testing.T) {
		_, err := New(Settings{Type: "semantic"})
		assert.ErrorContains(t, err, "unknown chunker")
	})
}

func TestRecursiveChunker_Chunk(t *testing.T) {
	t.Run("Should keep chunks within the configured size", func(t *testing.T) {
		c, err := NewRecursiveChunker(40, 10)
		require.NoError(t, err)
		content := strings.Repeat("Built distributed systems in Go.\n", 10)

		chunks, err := c.Chunk(domain.Document{ID: "d", Content: content})
		require.NoError(t, err)

		require.NotEmpty(t, chunks)
		for i, ch := range chunks {
			assert.Equal(t, i, ch.Index)
			assert.Equal(t, -1, ch.Offset)
			assert.LessOrEqual(t, len([]rune(ch.Text)), 40)
			assert.NotEmpty(t, ch.Text)
		}
	})

	t.Run("Should yield no chunks for empty content", func(t *testing.T) {
		c, err := NewRecursiveChunker(40, 10)
		require.NoError(t, err)

		chunks, err := c.Chunk(domain.Document{ID: "d"})
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})
}

func TestSentenceChunker_Chunk(t *testing.T) {
	t.Run("Should group sentences with overlap", func(t *testing.T) {
		c := NewSentenceChunker(2, 1)

		chunks, err := c.Chunk(domain.Document{ID: "d", Content: "One. Two. Three. Four."})
		require.NoError(t, err)

		texts := make([]string, len(chunks))
		for i, ch := range chunks {
			texts[i] = ch.Text
		}
		assert.Equal(t, []string{"One. Two.", "Two. Three.", "Three. Four."}, texts)
	})

	t.Run("Should clamp overlap so the window always advances", func(t *testing.T) {
		c := NewSentenceChunker(1, 5)

		chunks, err := c.Chunk(domain.Document{ID: "d", Content: "One. Two."})
		require.NoError(t, err)
		assert.Len(t, chunks, 2)
	})
}
