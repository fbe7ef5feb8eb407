package rag

import (
	"math"

	"docextract-ai/internal/retrieval"
)

// Confidence returns the mean of the chunks' relevance scores, each clipped
// to [0,1], rounded to 3 decimal places. Returns the neutral 0.5 when no
// chunk carries a score.
func Confidence(chunks []retrieval.RetrievedChunk) float64 {
	var sum float64
	var n int
	for _, c := range chunks {
		if !c.Scored {
			continue
		}
		score := c.Score
		if score < 0 {
			score = 0
		}
		if score > 1 {
			score = 1
		}
		sum += score
		n++
	}
	if n == 0 {
		return 0.5
	}
	return math.Round(sum/float64(n)*1000) / 1000
}
