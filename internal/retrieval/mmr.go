package retrieval

import (
	"context"
	"fmt"

	"docextract-ai/internal/vectorstore"
)

// mmrStrategy reranks an over-fetched candidate pool with maximal marginal
// relevance, trading query relevance against redundancy among picks.
type mmrStrategy struct {
	store      vectorstore.VectorStore
	lambda     float64
	poolFactor int
}

func (s mmrStrategy) Name() string { return "mmr" }

func (s mmrStrategy) Retrieve(ctx context.Context, query []float32, k int) ([]RetrievedChunk, error) {
	candidates, err := s.store.SearchWithVectors(ctx, query, k*s.poolFactor)
	if err != nil {
		return nil, fmt.Errorf("mmr candidate search failed: %w", err)
	}

	selected := maximalMarginalRelevance(candidates, k, s.lambda)
	chunks := make([]RetrievedChunk, 0, len(selected))
	for _, r := range selected {
		chunks = append(chunks, fromSearchResult(r))
	}
	return chunks, nil
}

// maximalMarginalRelevance greedily selects up to k candidates maximizing
// lambda*relevance - (1-lambda)*maxSimilarityToSelected. Candidates keep
// their original relevance score. Candidates without stored vectors are
// penalized only by relevance.
func maximalMarginalRelevance(candidates []vectorstore.SearchResult, k int, lambda float64) []vectorstore.SearchResult {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	selected := make([]vectorstore.SearchResult, 0, k)
	remaining := make([]vectorstore.SearchResult, len(candidates))
	copy(remaining, candidates)

	for len(selected) < k && len(remaining) > 0 {
		best := 0
		bestScore := mmrScore(remaining[0], selected, lambda)
		for i := 1; i < len(remaining); i++ {
			if score := mmrScore(remaining[i], selected, lambda); score > bestScore {
				best = i
				bestScore = score
			}
		}
		selected = append(selected, remaining[best])
		remaining = append(remaining[:best], remaining[best+1:]...)
	}
	return selected
}

func mmrScore(candidate vectorstore.SearchResult, selected []vectorstore.SearchResult, lambda float64) float64 {
	relevance := float64(candidate.Score)
	if len(selected) == 0 {
		return relevance
	}

	var maxSim float64
	for _, s := range selected {
		if len(candidate.Vec) == 0 || len(candidate.Vec) != len(s.Vec) {
			continue
		}
		if sim := float64(dotProduct(candidate.Vec, s.Vec)); sim > maxSim {
			maxSim = sim
		}
	}
	return lambda*relevance - (1-lambda)*maxSim
}

func dotProduct(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
