package chunker

import (
	"strings"

	"resumeqa/internal/domain"
)

// WindowChunker cuts the document into fixed-size rune windows. Each window
// starts size-overlap runes after the previous one and the last window ends
// exactly at the end of the document.
type WindowChunker struct {
	size    int
	overlap int
}

func NewWindowChunker(size, overlap int) (*WindowChunker, error) {
	if err := validateWindow(size, overlap); err != nil {
		return nil, err
	}
	return &WindowChunker{size: size, overlap: overlap}, nil
}

func (c *WindowChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	if strings.TrimSpace(document.Content) == "" {
		return nil, nil
	}
	runes := []rune(document.Content)
	step := c.size - c.overlap
	var chunks []domain.Chunk
	for start := 0; ; start += step {
		end := min(start+c.size, len(runes))
		chunks = append(chunks, newChunk(document.ID, len(chunks), string(runes[start:end]), start))
		if end == len(runes) {
			break
		}
	}
	return chunks, nil
}
