// Package memory coordinates the persisted document memory: the vector index
// and the chunk document store live and die together under one directory.
package memory

import (
	"context"
	"fmt"

	"docextract-ai/internal/contextutil"
	"docextract-ai/internal/storage"
	"docextract-ai/internal/vectorstore"
)

// Chunk is one indexed unit of document text. Embedding may be nil on
// insert; the manager embeds such chunks in a single batch call.
type Chunk struct {
	ID         string
	Text       string
	Embedding  []float32
	FileName   string
	SourceType string
	Position   int
}

// InitResult reports which branch of Initialize ran.
type InitResult int

const (
	// Initialized means a fresh empty memory was set up.
	Initialized InitResult = iota
	// Loaded means previously persisted memory was restored.
	Loaded
)

// String returns the result name for logging.
func (r InitResult) String() string {
	if r == Loaded {
		return "loaded"
	}
	return "initialized"
}

// Status summarizes the current memory contents. Files lists the indexed
// source file names in insertion order.
type Status struct {
	IndexSize int      `json:"index_size"`
	DocCount  int      `json:"doc_count"`
	HasData   bool     `json:"has_data"`
	Files     []string `json:"files"`
}

// Embedder produces one vector per input text.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Manager is the sole mutator of the vector store and the chunk store.
// The HTTP layer serializes calls, so no internal locking is performed.
type Manager struct {
	store    vectorstore.VectorStore
	chunks   storage.ChunkStore
	embedder Embedder
}

// NewManager creates a memory manager over the given backing stores.
func NewManager(store vectorstore.VectorStore, chunks storage.ChunkStore, embedder Embedder) *Manager {
	return &Manager{
		store:    store,
		chunks:   chunks,
		embedder: embedder,
	}
}

// Initialize opens the vector store and reconciles it with the chunk store.
// When the two disagree on size the persisted state is considered corrupt
// and both are wiped, falling back to a fresh empty memory.
func (m *Manager) Initialize(ctx context.Context) (InitResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	state, err := m.store.Open(ctx)
	if err != nil {
		return Initialized, fmt.Errorf("failed to open vector store: %w", err)
	}

	indexSize, err := m.store.Count(ctx)
	if err != nil {
		return Initialized, fmt.Errorf("failed to count index points: %w", err)
	}
	docCount, err := m.chunks.Count(ctx)
	if err != nil {
		return Initialized, fmt.Errorf("failed to count stored chunks: %w", err)
	}

	if indexSize != docCount {
		logger.WarnContext(ctx, "index and document store disagree, rebuilding empty",
			"index_size", indexSize, "doc_count", docCount)
		if err := m.wipe(ctx); err != nil {
			return Initialized, err
		}
		return Initialized, nil
	}

	if err := m.store.Persist(ctx); err != nil {
		return Initialized, fmt.Errorf("failed to persist index: %w", err)
	}

	if state == vectorstore.OpenStateLoaded {
		logger.InfoContext(ctx, "memory restored", "index_size", indexSize, "doc_count", docCount)
		return Loaded, nil
	}
	logger.InfoContext(ctx, "memory initialized empty")
	return Initialized, nil
}

// Insert embeds any chunks that lack vectors, indexes all of them, stores
// their text, and persists the index. A persist failure after a successful
// insert is logged but not returned; the in-memory state is already correct.
func (m *Manager) Insert(ctx context.Context, chunks []Chunk) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(chunks) == 0 {
		return fmt.Errorf("no chunks to insert")
	}

	var missing []int
	var texts []string
	for i, c := range chunks {
		if len(c.Embedding) == 0 {
			missing = append(missing, i)
			texts = append(texts, c.Text)
		}
	}
	if len(missing) > 0 {
		embeddings, err := m.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed chunks: %w", err)
		}
		for j, i := range missing {
			chunks[i].Embedding = embeddings[j]
		}
	}

	points := make([]vectorstore.Point, 0, len(chunks))
	for _, c := range chunks {
		points = append(points, vectorstore.Point{
			ID:  c.ID,
			Vec: c.Embedding,
			Meta: map[string]any{
				"file_name":   c.FileName,
				"source_type": c.SourceType,
				"position":    c.Position,
			},
		})
	}
	if err := m.store.Upsert(ctx, points); err != nil {
		return fmt.Errorf("%w: failed to index chunks: %v", vectorstore.ErrUnavailable, err)
	}

	for _, c := range chunks {
		record := &storage.ChunkRecord{
			ID:         c.ID,
			Text:       c.Text,
			FileName:   c.FileName,
			SourceType: c.SourceType,
			Position:   c.Position,
		}
		if err := m.chunks.Insert(ctx, record); err != nil {
			return fmt.Errorf("failed to store chunk %s: %w", c.ID, err)
		}
	}

	if err := m.store.Persist(ctx); err != nil {
		logger.ErrorContext(ctx, "failed to persist index after insert", "error", err)
	}

	logger.InfoContext(ctx, "chunks inserted", "count", len(chunks))
	return nil
}

// Clear wipes all indexed and stored data and persists the empty state.
// Safe to call when nothing has been persisted yet.
func (m *Manager) Clear(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	if err := m.wipe(ctx); err != nil {
		return err
	}

	logger.InfoContext(ctx, "memory cleared")
	return nil
}

func (m *Manager) wipe(ctx context.Context) error {
	if err := m.store.Reset(ctx); err != nil {
		return fmt.Errorf("%w: failed to reset: %v", vectorstore.ErrUnavailable, err)
	}
	if err := m.chunks.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear document store: %w", err)
	}
	if err := m.store.Persist(ctx); err != nil {
		return fmt.Errorf("failed to persist empty index: %w", err)
	}
	return nil
}

// Status reports the current memory contents.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	indexSize, err := m.store.Count(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("%w: failed to count points: %v", vectorstore.ErrUnavailable, err)
	}
	docCount, err := m.chunks.Count(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("failed to count stored chunks: %w", err)
	}
	files, err := m.chunks.ListFileNames(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("failed to list file names: %w", err)
	}
	if files == nil {
		files = []string{}
	}
	return Status{
		IndexSize: indexSize,
		DocCount:  docCount,
		HasData:   indexSize > 0 || docCount > 0,
		Files:     files,
	}, nil
}
