package ingest

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"docextract-ai/internal/memory"
)

type fakeInserter struct {
	chunks []memory.Chunk
	err    error
}

func (f *fakeInserter) Insert(ctx context.Context, chunks []memory.Chunk) error {
	if f.err != nil {
		return f.err
	}
	f.chunks = append(f.chunks, chunks...)
	return nil
}

func newTestIngestor(t *testing.T, inserter Inserter) (*Ingestor, string) {
	t.Helper()
	uploadsDir := t.TempDir()
	ing := NewIngestor(uploadsDir, 30, 800, 120, inserter)
	ing.extractText = func(path string) (string, error) {
		return "First sentence of the document. Second sentence with more detail.", nil
	}
	return ing, uploadsDir
}

func TestIngestor_IndexesSupportedFile(t *testing.T) {
	inserter := &fakeInserter{}
	ing, uploadsDir := newTestIngestor(t, inserter)

	report, err := ing.Ingest(context.Background(), []Upload{
		{Name: "report.pdf", Size: 2 << 20, Reader: strings.NewReader("%PDF-fake")},
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if len(report.IndexedFiles) != 1 || report.IndexedFiles[0] != "report.pdf" {
		t.Errorf("IndexedFiles = %v, want [report.pdf]", report.IndexedFiles)
	}
	if report.ChunksAdded == 0 {
		t.Error("ChunksAdded = 0, want > 0")
	}
	if len(report.Skipped) != 0 {
		t.Errorf("Skipped = %v, want empty", report.Skipped)
	}

	for _, c := range inserter.chunks {
		if c.FileName != "report.pdf" {
			t.Errorf("chunk file name = %q, want %q", c.FileName, "report.pdf")
		}
		if c.SourceType != SourceTypeUploadedDoc {
			t.Errorf("chunk source type = %q, want %q", c.SourceType, SourceTypeUploadedDoc)
		}
		if c.ID == "" {
			t.Error("chunk ID is empty")
		}
	}

	// Staged files must be removed regardless of outcome.
	entries, err := os.ReadDir(uploadsDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("uploads dir has %d leftover files, want 0", len(entries))
	}
}

func TestIngestor_SkipsOversizedAndIndexesValid(t *testing.T) {
	inserter := &fakeInserter{}
	ing, _ := newTestIngestor(t, inserter)

	report, err := ing.Ingest(context.Background(), []Upload{
		{Name: "huge.pdf", Size: 40 << 20, Reader: strings.NewReader("ignored")},
		{Name: "small.pdf", Size: 2 << 20, Reader: strings.NewReader("%PDF-fake")},
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if len(report.Skipped) != 1 {
		t.Fatalf("Skipped = %v, want one entry", report.Skipped)
	}
	if report.Skipped[0].Name != "huge.pdf" {
		t.Errorf("skipped name = %q, want %q", report.Skipped[0].Name, "huge.pdf")
	}
	if report.Skipped[0].Reason != ">30MB" {
		t.Errorf("skip reason = %q, want %q", report.Skipped[0].Reason, ">30MB")
	}
	if len(report.IndexedFiles) != 1 || report.IndexedFiles[0] != "small.pdf" {
		t.Errorf("IndexedFiles = %v, want [small.pdf]", report.IndexedFiles)
	}
}

func TestIngestor_SkipsUnsupportedExtension(t *testing.T) {
	inserter := &fakeInserter{}
	ing, _ := newTestIngestor(t, inserter)

	report, err := ing.Ingest(context.Background(), []Upload{
		{Name: "notes.txt", Size: 100, Reader: strings.NewReader("plain text")},
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if len(report.Skipped) != 1 || report.Skipped[0].Reason != ReasonUnsupported {
		t.Errorf("Skipped = %v, want one unsupported entry", report.Skipped)
	}
	if len(inserter.chunks) != 0 {
		t.Errorf("inserted %d chunks, want 0", len(inserter.chunks))
	}
}

func TestIngestor_SkipsUnreadableFile(t *testing.T) {
	inserter := &fakeInserter{}
	ing, _ := newTestIngestor(t, inserter)
	ing.extractText = func(path string) (string, error) {
		return "", errors.New("garbled stream")
	}

	report, err := ing.Ingest(context.Background(), []Upload{
		{Name: "broken.pdf", Size: 100, Reader: strings.NewReader("not a pdf")},
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if len(report.Skipped) != 1 || report.Skipped[0].Reason != ReasonUnreadable {
		t.Errorf("Skipped = %v, want one unreadable entry", report.Skipped)
	}
}

func TestIngestor_InsertFailureAbortsBatch(t *testing.T) {
	inserter := &fakeInserter{err: errors.New("embedding service down")}
	ing, uploadsDir := newTestIngestor(t, inserter)

	_, err := ing.Ingest(context.Background(), []Upload{
		{Name: "doc.docx", Size: 100, Reader: strings.NewReader("fake docx")},
	})
	if err == nil {
		t.Fatal("Ingest() expected error when insert fails")
	}

	entries, readErr := os.ReadDir(uploadsDir)
	if readErr != nil {
		t.Fatalf("ReadDir() error = %v", readErr)
	}
	if len(entries) != 0 {
		t.Errorf("uploads dir has %d leftover files after failure, want 0", len(entries))
	}
}
