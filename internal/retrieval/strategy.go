package retrieval

import (
	"context"
	"fmt"

	"docextract-ai/internal/vectorstore"
)

// Strategy produces a ranked candidate list for a query vector.
type Strategy interface {
	Name() string
	Retrieve(ctx context.Context, query []float32, k int) ([]RetrievedChunk, error)
}

// similarityStrategy is a plain top-k cosine search.
type similarityStrategy struct {
	store vectorstore.VectorStore
}

func (s similarityStrategy) Name() string { return "similarity" }

func (s similarityStrategy) Retrieve(ctx context.Context, query []float32, k int) ([]RetrievedChunk, error) {
	results, err := s.store.Search(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}
	chunks := make([]RetrievedChunk, 0, len(results))
	for _, r := range results {
		chunks = append(chunks, fromSearchResult(r))
	}
	return chunks, nil
}
