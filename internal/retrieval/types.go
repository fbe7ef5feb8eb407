// Package retrieval finds the indexed chunks most relevant to a query,
// fusing a plain similarity pass with a diversity-aware one.
package retrieval

import (
	"hash/fnv"
	"strconv"

	"docextract-ai/internal/vectorstore"
)

// RetrievedChunk is one candidate returned for a query. Scored is false for
// chunks that never received a similarity score; such chunks survive the
// relevance filter unconditionally.
type RetrievedChunk struct {
	ID         string
	Text       string
	FileName   string
	SourceType string
	Position   int
	Score      float64
	Scored     bool
}

// key identifies a chunk across result lists: the chunk ID when present,
// otherwise a hash of its text.
func (c RetrievedChunk) key() string {
	if c.ID != "" {
		return c.ID
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(c.Text))
	return "t:" + strconv.FormatUint(h.Sum64(), 16)
}

// fromSearchResult maps a vector store hit onto a RetrievedChunk.
// Text is resolved from the document store later.
func fromSearchResult(r vectorstore.SearchResult) RetrievedChunk {
	c := RetrievedChunk{
		ID:     r.PointID,
		Score:  float64(r.Score),
		Scored: true,
	}
	if v, ok := r.Meta["file_name"].(string); ok {
		c.FileName = v
	}
	if v, ok := r.Meta["source_type"].(string); ok {
		c.SourceType = v
	}
	switch v := r.Meta["position"].(type) {
	case int:
		c.Position = v
	case int64:
		c.Position = int(v)
	case float64:
		c.Position = int(v)
	}
	return c
}
