// Package ingest turns uploaded document files into indexed chunks.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"docextract-ai/internal/contextutil"
	"docextract-ai/internal/extract"
	"docextract-ai/internal/memory"
)

// SourceTypeUploadedDoc tags chunks that came from a user-uploaded file.
const SourceTypeUploadedDoc = "uploaded_doc"

// Skip reasons reported per rejected file.
const (
	ReasonUnsupported = "unsupported"
	ReasonUnreadable  = "unreadable"
)

// Upload is one incoming file to ingest.
type Upload struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// SkippedFile names a rejected file and why it was rejected.
type SkippedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Report summarizes one ingestion batch.
type Report struct {
	IndexedFiles []string      `json:"indexed_files"`
	ChunksAdded  int           `json:"chunks_added"`
	Skipped      []SkippedFile `json:"skipped"`
}

// Inserter accepts chunk batches for embedding and indexing.
type Inserter interface {
	Insert(ctx context.Context, chunks []memory.Chunk) error
}

// Ingestor validates, extracts, chunks, and indexes uploaded files.
// Per-file failures are reported as skips; only embedding or indexing
// failures abort the batch.
type Ingestor struct {
	uploadsDir string
	maxBytes   int64
	maxMB      int64
	chunker    *SentenceChunker
	memory     Inserter

	// extractText is swapped out in tests.
	extractText func(path string) (string, error)
}

// NewIngestor creates an ingestor that stages uploads under uploadsDir and
// rejects files larger than maxUploadMB megabytes.
func NewIngestor(uploadsDir string, maxUploadMB int64, chunkSize, chunkOverlap int, mem Inserter) *Ingestor {
	return &Ingestor{
		uploadsDir:  uploadsDir,
		maxBytes:    maxUploadMB << 20,
		maxMB:       maxUploadMB,
		chunker:     NewSentenceChunker(chunkSize, chunkOverlap),
		memory:      mem,
		extractText: extract.Text,
	}
}

type stagedFile struct {
	name string
	path string
}

// Ingest processes a batch of uploads. Staged temp files are removed before
// returning regardless of outcome.
func (ing *Ingestor) Ingest(ctx context.Context, uploads []Upload) (Report, error) {
	logger := contextutil.LoggerFromContext(ctx)

	report := Report{
		IndexedFiles: []string{},
		Skipped:      []SkippedFile{},
	}

	if err := os.MkdirAll(ing.uploadsDir, 0755); err != nil {
		return report, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	var staged []stagedFile
	defer func() {
		for _, f := range staged {
			if err := os.Remove(f.path); err != nil {
				logger.WarnContext(ctx, "failed to remove staged file", "path", f.path, "error", err)
			}
		}
	}()

	for _, up := range uploads {
		name := filepath.Base(up.Name)
		ext := strings.ToLower(filepath.Ext(name))
		if !extract.SupportedExtensions[ext] {
			logger.WarnContext(ctx, "skipping unsupported file", "file", name, "ext", ext)
			report.Skipped = append(report.Skipped, SkippedFile{Name: name, Reason: ReasonUnsupported})
			continue
		}
		if up.Size > ing.maxBytes {
			logger.WarnContext(ctx, "skipping oversized file", "file", name, "size", up.Size)
			report.Skipped = append(report.Skipped, SkippedFile{
				Name:   name,
				Reason: fmt.Sprintf(">%dMB", ing.maxMB),
			})
			continue
		}

		path, err := ing.stage(name, up.Reader)
		if err != nil {
			logger.WarnContext(ctx, "failed to stage file", "file", name, "error", err)
			report.Skipped = append(report.Skipped, SkippedFile{Name: name, Reason: ReasonUnreadable})
			continue
		}
		staged = append(staged, stagedFile{name: name, path: path})
	}

	var batch []memory.Chunk
	for _, f := range staged {
		text, err := ing.extractText(f.path)
		if err != nil || strings.TrimSpace(text) == "" {
			logger.WarnContext(ctx, "failed to extract text", "file", f.name, "error", err)
			report.Skipped = append(report.Skipped, SkippedFile{Name: f.name, Reason: ReasonUnreadable})
			continue
		}

		pieces := ing.chunker.Chunk(text)
		if len(pieces) == 0 {
			report.Skipped = append(report.Skipped, SkippedFile{Name: f.name, Reason: ReasonUnreadable})
			continue
		}

		for i, piece := range pieces {
			batch = append(batch, memory.Chunk{
				ID:         uuid.New().String(),
				Text:       piece,
				FileName:   f.name,
				SourceType: SourceTypeUploadedDoc,
				Position:   i,
			})
		}
		report.IndexedFiles = append(report.IndexedFiles, f.name)
		logger.InfoContext(ctx, "file chunked", "file", f.name, "chunks", len(pieces))
	}

	if len(batch) == 0 {
		return report, nil
	}

	if err := ing.memory.Insert(ctx, batch); err != nil {
		return report, fmt.Errorf("failed to index uploaded files: %w", err)
	}
	report.ChunksAdded = len(batch)

	logger.InfoContext(ctx, "ingestion complete",
		"indexed", len(report.IndexedFiles), "chunks", report.ChunksAdded, "skipped", len(report.Skipped))
	return report, nil
}

// stage copies an upload to a unique file under the uploads directory.
func (ing *Ingestor) stage(name string, r io.Reader) (string, error) {
	path := filepath.Join(ing.uploadsDir, fmt.Sprintf("%s-%s", uuid.New().String(), name))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create staged file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write staged file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to close staged file: %w", err)
	}
	return path, nil
}
