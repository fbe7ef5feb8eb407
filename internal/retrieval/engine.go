package retrieval

import (
	"context"
	"fmt"
	"sort"

	"docextract-ai/internal/contextutil"
	"docextract-ai/internal/storage"
	"docextract-ai/internal/vectorstore"
)

const (
	mmrLambda     = 0.5
	mmrPoolFactor = 4
)

// Embedder produces one vector per input text.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Engine retrieves relevant chunks for a query. It reads the index and the
// document store but never mutates them.
type Engine struct {
	embedder   Embedder
	store      vectorstore.VectorStore
	chunks     storage.ChunkStore
	strategies []Strategy
}

// NewEngine creates a retrieval engine running a plain similarity search
// and an MMR search, fused by reciprocal rank.
func NewEngine(embedder Embedder, store vectorstore.VectorStore, chunks storage.ChunkStore) *Engine {
	return &Engine{
		embedder: embedder,
		store:    store,
		chunks:   chunks,
		strategies: []Strategy{
			similarityStrategy{store: store},
			mmrStrategy{store: store, lambda: mmrLambda, poolFactor: mmrPoolFactor},
		},
	}
}

// Retrieve runs every strategy for the query, fuses their rankings, filters
// by min relevance, and returns at most rerankK chunks with text resolved
// from the document store. An empty index yields an empty result without
// touching the embedder. A single strategy failing degrades to an empty
// list for that strategy rather than failing the call.
func (e *Engine) Retrieve(ctx context.Context, query string, topK, rerankK int, minRelevance float64) ([]RetrievedChunk, error) {
	logger := contextutil.LoggerFromContext(ctx)

	count, err := e.store.Count(ctx)
	if err != nil {
		logger.WarnContext(ctx, "failed to count index points, treating index as empty", "error", err)
		return []RetrievedChunk{}, nil
	}
	if count == 0 {
		return []RetrievedChunk{}, nil
	}

	embeddings, err := e.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	queryVec := embeddings[0]

	lists := make([][]RetrievedChunk, 0, len(e.strategies))
	for _, strategy := range e.strategies {
		list, err := strategy.Retrieve(ctx, queryVec, topK)
		if err != nil {
			logger.WarnContext(ctx, "retrieval strategy failed", "strategy", strategy.Name(), "error", err)
			list = nil
		}
		lists = append(lists, list)
	}

	fused := fuseRRF(lists, topK)

	filtered := fused[:0]
	for _, c := range fused {
		if c.Scored && c.Score < minRelevance {
			continue
		}
		filtered = append(filtered, c)
	}

	sort.SliceStable(filtered, func(a, b int) bool {
		return filtered[a].Score > filtered[b].Score
	})
	if rerankK < len(filtered) {
		filtered = filtered[:rerankK]
	}

	final := make([]RetrievedChunk, 0, len(filtered))
	for _, c := range filtered {
		record, err := e.chunks.GetByID(ctx, c.ID)
		if err != nil {
			logger.WarnContext(ctx, "failed to resolve chunk text", "chunk_id", c.ID, "error", err)
			continue
		}
		c.Text = record.Text
		if c.FileName == "" {
			c.FileName = record.FileName
		}
		if c.SourceType == "" {
			c.SourceType = record.SourceType
		}
		final = append(final, c)
	}

	logger.DebugContext(ctx, "retrieval completed",
		"candidates", len(fused), "returned", len(final), "min_relevance", minRelevance)
	return final, nil
}
