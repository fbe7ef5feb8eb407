package retrieval

import "sort"

// rrfC dampens the influence of top ranks in reciprocal rank fusion.
const rrfC = 60

// fuseRRF merges ranked lists by reciprocal rank fusion: each chunk is
// ranked by the sum of 1/(rrfC+rank) over the lists it appears in, rank
// counted from 1. The fused score orders and truncates the merged list to
// at most k chunks; each chunk keeps its original relevance score, which
// downstream filtering operates on. Ties keep first-seen order, so fusion
// is deterministic for fixed inputs.
func fuseRRF(lists [][]RetrievedChunk, k int) []RetrievedChunk {
	fusedScores := make(map[string]float64)
	byKey := make(map[string]RetrievedChunk)
	var order []string

	for _, list := range lists {
		for rank, chunk := range list {
			key := chunk.key()
			if _, seen := byKey[key]; !seen {
				byKey[key] = chunk
				order = append(order, key)
			}
			fusedScores[key] += 1.0 / float64(rrfC+rank+1)
		}
	}

	sort.SliceStable(order, func(a, b int) bool {
		return fusedScores[order[a]] > fusedScores[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}
	fused := make([]RetrievedChunk, 0, k)
	for _, key := range order[:k] {
		fused = append(fused, byKey[key])
	}
	return fused
}
