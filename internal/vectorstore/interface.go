package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks docextract-ai/internal/vectorstore VectorStore

import (
	"context"
	"errors"
)

// ErrUnavailable marks vector store failures callers should treat as a
// temporarily unavailable backend.
var ErrUnavailable = errors.New("vector store unavailable")

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a search result from vector search.
// Vec is populated only by SearchWithVectors.
type SearchResult struct {
	PointID string
	Score   float32
	Vec     []float32
	Meta    map[string]any
}

// OpenState reports which branch of the load-or-initialize routine ran.
type OpenState int

const (
	// OpenStateCreated means a fresh empty index was initialized.
	OpenStateCreated OpenState = iota
	// OpenStateLoaded means a previously persisted index was loaded.
	OpenStateLoaded
)

// String returns the state name for logging.
func (s OpenState) String() string {
	switch s {
	case OpenStateLoaded:
		return "loaded"
	default:
		return "created"
	}
}

// VectorStore defines the interface for vector index operations.
// Implementations assume vectors are L2-normalized, so inner-product
// similarity behaves as cosine similarity.
type VectorStore interface {
	// Open loads a previously persisted index or initializes a fresh empty one.
	// A load failure falls back to a fresh index; the returned OpenState tags
	// which branch ran.
	Open(ctx context.Context) (OpenState, error)

	// Upsert inserts or replaces points in the index.
	Upsert(ctx context.Context, points []Point) error

	// Search performs a top-k similarity search.
	Search(ctx context.Context, query []float32, k int) ([]SearchResult, error)

	// SearchWithVectors performs a top-k similarity search and includes each
	// result's stored vector, for diversity-aware reranking.
	SearchWithVectors(ctx context.Context, query []float32, k int) ([]SearchResult, error)

	// Count returns the number of indexed points.
	Count(ctx context.Context) (int, error)

	// Persist writes the index to durable storage. Backends with server-side
	// durability may treat this as a no-op.
	Persist(ctx context.Context) error

	// Reset destroys all indexed data and leaves an empty index in place.
	// It is safe to call on an already-empty or never-persisted index.
	Reset(ctx context.Context) error
}
