package service

import (
	"fmt"

	"resumeqa/internal/domain"
)

// search projects query into the fitted space and returns up to k chunks by
// descending cosine similarity. Ties, including the all-zero case of a query
// with no known terms, keep document order.
func (ix *Index) search(query string, k int) ([]domain.SearchResult, error) {
	vec, err := ix.embedder.Embed(query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return ix.store.Search(vec, k)
}
