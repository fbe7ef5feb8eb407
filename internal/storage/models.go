package storage

// ChunkRecord represents an indexed chunk of document text.
// The ID doubles as the vector point ID in the vector index.
type ChunkRecord struct {
	ID         string // UUID (same as vector point ID)
	Text       string // Chunk text content
	FileName   string // Source document file name (e.g., "report.pdf")
	SourceType string // Origin of the chunk (e.g., "uploaded_doc")
	Position   int    // Chunk position within the source document (starts at 0)
}
