package chunker

import (
	"fmt"
	"strconv"

	"resumeqa/internal/domain"
)

const (
	TypeWindow    = "window"
	TypeRecursive = "recursive"
	TypeSentence  = "sentence"

	DefaultSize    = 1000
	DefaultOverlap = 200
)

// Settings selects a chunking strategy and its parameters.
type Settings struct {
	Type              string
	Size              int
	Overlap           int
	SentencesPerChunk int
	OverlapSentences  int
}

// New builds the chunker named by settings.Type. An empty type selects the
// sliding window.
func New(settings Settings) (domain.Chunker, error) {
	switch settings.Type {
	case TypeWindow, "":
		return NewWindowChunker(settings.Size, settings.Overlap)
	case TypeRecursive:
		return NewRecursiveChunker(settings.Size, settings.Overlap)
	case TypeSentence:
		return NewSentenceChunker(settings.SentencesPerChunk, settings.OverlapSentences), nil
	default:
		return nil, fmt.Errorf("unknown chunker: %s", settings.Type)
	}
}

func validateWindow(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("chunker: size must be greater than zero, got %d", size)
	}
	if overlap < 0 {
		return fmt.Errorf("chunker: overlap cannot be negative, got %d", overlap)
	}
	if overlap >= size {
		return fmt.Errorf("chunker: overlap %d must be smaller than size %d", overlap, size)
	}
	return nil
}

func newChunk(documentID string, index int, text string, offset int) domain.Chunk {
	return domain.Chunk{
		ID:     documentID + ":" + strconv.Itoa(index),
		Index:  index,
		Text:   text,
		Offset: offset,
	}
}
