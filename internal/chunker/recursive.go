package chunker

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"resumeqa/internal/domain"
)

// RecursiveChunker splits on paragraph, line and word boundaries before
// falling back to characters, keeping chunks under size runes.
type RecursiveChunker struct {
	splitter textsplitter.RecursiveCharacter
}

func NewRecursiveChunker(size, overlap int) (*RecursiveChunker, error) {
	if err := validateWindow(size, overlap); err != nil {
		return nil, err
	}
	return &RecursiveChunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(size),
			textsplitter.WithChunkOverlap(overlap),
		),
	}, nil
}

func (c *RecursiveChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	if strings.TrimSpace(document.Content) == "" {
		return nil, nil
	}
	segments, err := c.splitter.SplitText(document.Content)
	if err != nil {
		return nil, fmt.Errorf("chunker: split document %s: %w", document.ID, err)
	}
	chunks := make([]domain.Chunk, 0, len(segments))
	for _, segment := range segments {
		text := strings.TrimSpace(segment)
		if text == "" {
			continue
		}
		chunks = append(chunks, newChunk(document.ID, len(chunks), text, -1))
	}
	return chunks, nil
}
