package domain

import "context"

// Document is the single text file the service answers questions about.
type Document struct {
	ID      string
	Path    string
	Content string
}

// Chunk is a contiguous slice of a document used for retrieval.
// Offset is the rune offset of Text inside the document, or -1 when the
// chunker cannot report it.
type Chunk struct {
	ID     string
	Index  int
	Text   string
	Offset int
}

// SearchResult represents a matching chunk with its cosine similarity.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Answer is the outcome of a question answered by the LLM.
type Answer struct {
	Query    string
	Response string
	Chunks   []Chunk
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) ([]float64, error)
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// VectorStore holds chunk vectors and supports similarity search.
type VectorStore interface {
	Init(dimension int) error
	Upsert(chunks []Chunk, vectors [][]float64) error
	Search(vector []float64, topK int) ([]SearchResult, error)
	Len() int
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// Completer is a remote text completion model.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
