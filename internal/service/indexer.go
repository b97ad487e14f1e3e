package service

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"resumeqa/internal/domain"
)

// Index is the immutable retrieval state built once from the document.
type Index struct {
	document domain.Document
	chunks   []domain.Chunk
	embedder domain.Embedder
	store    domain.VectorStore
	summary  string
}

// Chunks returns the indexed chunks in document order.
func (ix *Index) Chunks() []domain.Chunk {
	out := make([]domain.Chunk, len(ix.chunks))
	copy(out, ix.chunks)
	return out
}

// indexer bundles the components used to build an Index.
type indexer struct {
	chunker          domain.Chunker
	embedder         domain.Embedder
	store            domain.VectorStore
	summarizer       domain.Summarizer
	summarySentences int
}

func (x *indexer) build(path string) (*Index, error) {
	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	chunks, err := x.chunker.Chunk(doc)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", path, err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyDocument, path)
	}
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}
	if err := x.embedder.Prepare(texts); err != nil {
		return nil, fmt.Errorf("fit %s vector space: %w", x.embedder.Name(), err)
	}
	if err := x.store.Init(x.embedder.Dimension()); err != nil {
		return nil, err
	}
	vectors := make([][]float64, len(chunks))
	for i := range chunks {
		vec, err := x.embedder.Embed(chunks[i].Text)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %s: %w", chunks[i].ID, err)
		}
		vectors[i] = vec
	}
	if err := x.store.Upsert(chunks, vectors); err != nil {
		return nil, err
	}
	ix := &Index{document: doc, chunks: chunks, embedder: x.embedder, store: x.store}
	if x.summarizer != nil {
		summary, err := x.summarizer.Summarize(doc.Content, x.summarySentences)
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", path, err)
		}
		ix.summary = summary
	}
	return ix, nil
}

func readDocument(path string) (domain.Document, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Document{}, fmt.Errorf("%w: %s%s", domain.ErrSourceNotFound, path, listDir(filepath.Dir(path)))
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return domain.Document{ID: hashString(path), Path: path, Content: string(data)}, nil
}

// listDir names the files next to a missing document to help spot typos.
func listDir(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) == 0 {
		return ""
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return ""
	}
	return " (files in " + dir + ": " + strings.Join(names, ", ") + ")"
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
