package vectorstore

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"docextract-ai/internal/contextutil"
)

const (
	indexFileName    = "index.gob"
	manifestFileName = "manifest.json"
)

func init() {
	// Point metadata crosses the gob boundary as interface values.
	gob.Register(map[string]any{})
	gob.Register("")
	gob.Register(0)
	gob.Register(float64(0))
}

// flatManifest is the index-store state persisted alongside the index payload.
// Loading requires it to agree with the payload; a mismatch triggers the
// fresh-index fallback.
type flatManifest struct {
	Dimension int `json:"dimension"`
	Count     int `json:"count"`
}

// flatSnapshot is the serialized form of the index payload.
type flatSnapshot struct {
	IDs     []string
	Vectors [][]float32
	Meta    []map[string]any
}

// FlatStore is an exact inner-product index over normalized vectors,
// persisted as a directory holding the index payload and a manifest.
// It is the default backend; the surrounding application serializes access,
// so no internal locking is performed.
type FlatStore struct {
	dir string
	dim int

	ids  []string
	vecs [][]float32
	meta []map[string]any
}

// NewFlatStore creates a flat store rooted at dir for vectors of the given dimension.
// Call Open before any other operation.
func NewFlatStore(dir string, dim int) *FlatStore {
	return &FlatStore{dir: dir, dim: dim}
}

// Open loads the persisted index if the directory holds one, otherwise
// initializes a fresh empty index. Any load failure is logged as a warning
// and falls back to the fresh branch; prior data is lost in that path.
func (s *FlatStore) Open(ctx context.Context) (OpenState, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return OpenStateCreated, fmt.Errorf("failed to create index directory: %w", err)
	}

	indexPath := filepath.Join(s.dir, indexFileName)
	if _, err := os.Stat(indexPath); err != nil {
		s.reset()
		return OpenStateCreated, nil
	}

	if err := s.load(); err != nil {
		logger.WarnContext(ctx, "failed to load index, creating new", "dir", s.dir, "error", err)
		s.reset()
		return OpenStateCreated, nil
	}

	logger.InfoContext(ctx, "loaded existing index", "dir", s.dir, "points", len(s.ids))
	return OpenStateLoaded, nil
}

// load reads and validates the persisted payload and manifest.
func (s *FlatStore) load() error {
	manifestRaw, err := os.ReadFile(filepath.Join(s.dir, manifestFileName))
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}
	var manifest flatManifest
	if err := json.Unmarshal(manifestRaw, &manifest); err != nil {
		return fmt.Errorf("failed to parse manifest: %w", err)
	}
	if manifest.Dimension != s.dim {
		return fmt.Errorf("dimension mismatch: index has %d, expected %d", manifest.Dimension, s.dim)
	}

	f, err := os.Open(filepath.Join(s.dir, indexFileName))
	if err != nil {
		return fmt.Errorf("failed to open index payload: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	var snap flatSnapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return fmt.Errorf("failed to decode index payload: %w", err)
	}

	if len(snap.IDs) != len(snap.Vectors) || len(snap.IDs) != len(snap.Meta) {
		return fmt.Errorf("inconsistent index payload: %d ids, %d vectors, %d meta",
			len(snap.IDs), len(snap.Vectors), len(snap.Meta))
	}
	if manifest.Count != len(snap.IDs) {
		return fmt.Errorf("manifest count mismatch: manifest has %d, payload has %d", manifest.Count, len(snap.IDs))
	}
	for i, vec := range snap.Vectors {
		if len(vec) != s.dim {
			return fmt.Errorf("vector %d has dimension %d, expected %d", i, len(vec), s.dim)
		}
	}

	s.ids = snap.IDs
	s.vecs = snap.Vectors
	s.meta = snap.Meta
	return nil
}

// reset clears the in-memory index.
func (s *FlatStore) reset() {
	s.ids = nil
	s.vecs = nil
	s.meta = nil
}

// Upsert inserts or replaces points in the index.
func (s *FlatStore) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	byID := make(map[string]int, len(s.ids))
	for i, id := range s.ids {
		byID[id] = i
	}

	for _, p := range points {
		if len(p.Vec) != s.dim {
			return fmt.Errorf("point %s has dimension %d, expected %d", p.ID, len(p.Vec), s.dim)
		}
		if i, ok := byID[p.ID]; ok {
			s.vecs[i] = p.Vec
			s.meta[i] = p.Meta
			continue
		}
		byID[p.ID] = len(s.ids)
		s.ids = append(s.ids, p.ID)
		s.vecs = append(s.vecs, p.Vec)
		s.meta = append(s.meta, p.Meta)
	}

	return nil
}

// Search performs a top-k inner-product search.
func (s *FlatStore) Search(ctx context.Context, query []float32, k int) ([]SearchResult, error) {
	return s.search(query, k, false)
}

// SearchWithVectors performs a top-k inner-product search including stored vectors.
func (s *FlatStore) SearchWithVectors(ctx context.Context, query []float32, k int) ([]SearchResult, error) {
	return s.search(query, k, true)
}

func (s *FlatStore) search(query []float32, k int, withVectors bool) ([]SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}
	if len(query) != s.dim {
		return nil, fmt.Errorf("query has dimension %d, expected %d", len(query), s.dim)
	}
	if len(s.ids) == 0 {
		return []SearchResult{}, nil
	}

	idxs := make([]int, len(s.ids))
	scores := make([]float32, len(s.ids))
	for i := range s.ids {
		idxs[i] = i
		scores[i] = dot(s.vecs[i], query)
	}
	sort.SliceStable(idxs, func(a, b int) bool {
		return scores[idxs[a]] > scores[idxs[b]]
	})

	if k > len(idxs) {
		k = len(idxs)
	}
	results := make([]SearchResult, 0, k)
	for _, i := range idxs[:k] {
		r := SearchResult{
			PointID: s.ids[i],
			Score:   scores[i],
			Meta:    s.meta[i],
		}
		if withVectors {
			r.Vec = s.vecs[i]
		}
		results = append(results, r)
	}
	return results, nil
}

// Count returns the number of indexed points.
func (s *FlatStore) Count(ctx context.Context) (int, error) {
	return len(s.ids), nil
}

// Persist writes the index payload and manifest to the store directory.
// Files are written to temporary names and renamed so a crash mid-write
// cannot leave a truncated index behind.
func (s *FlatStore) Persist(ctx context.Context) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	indexPath := filepath.Join(s.dir, indexFileName)
	tmp, err := os.CreateTemp(s.dir, indexFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp index file: %w", err)
	}
	snap := flatSnapshot{IDs: s.ids, Vectors: s.vecs, Meta: s.meta}
	if err := gob.NewEncoder(tmp).Encode(&snap); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to encode index payload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp index file: %w", err)
	}
	if err := os.Rename(tmp.Name(), indexPath); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace index payload: %w", err)
	}

	manifest := flatManifest{Dimension: s.dim, Count: len(s.ids)}
	manifestRaw, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	manifestPath := filepath.Join(s.dir, manifestFileName)
	tmpManifest := manifestPath + ".tmp"
	if err := os.WriteFile(tmpManifest, manifestRaw, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tmpManifest, manifestPath); err != nil {
		_ = os.Remove(tmpManifest)
		return fmt.Errorf("failed to replace manifest: %w", err)
	}

	return nil
}

// Reset deletes the persisted directory and leaves an empty index in place.
// Safe to call even if the directory does not exist.
func (s *FlatStore) Reset(ctx context.Context) error {
	s.reset()
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("failed to remove index directory: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to recreate index directory: %w", err)
	}
	return nil
}

// dot computes the inner product of two vectors of equal length.
func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
