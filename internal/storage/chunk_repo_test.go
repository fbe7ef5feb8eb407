package storage

import (
	"context"
	"errors"
	"testing"
)

func newTestRepo(t *testing.T) *ChunkRepo {
	t.Helper()

	dbPath := t.TempDir() + "/test.db"
	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewChunkRepo(db)
}

func TestChunkRepo_InsertAndGetByID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	chunk := &ChunkRecord{
		ID:         "chunk-1",
		Text:       "Quarterly revenue grew by 12 percent.",
		FileName:   "report.pdf",
		SourceType: "uploaded_doc",
		Position:   0,
	}
	if err := repo.Insert(ctx, chunk); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "chunk-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Text != chunk.Text {
		t.Errorf("GetByID() text = %q, want %q", got.Text, chunk.Text)
	}
	if got.FileName != "report.pdf" {
		t.Errorf("GetByID() file name = %q, want %q", got.FileName, "report.pdf")
	}
	if got.Position != 0 {
		t.Errorf("GetByID() position = %d, want 0", got.Position)
	}
}

func TestChunkRepo_GetByID_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestChunkRepo_Count(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d, want 0", count)
	}

	for i, id := range []string{"a", "b", "c"} {
		chunk := &ChunkRecord{ID: id, Text: "text", FileName: "f.pdf", SourceType: "uploaded_doc", Position: i}
		if err := repo.Insert(ctx, chunk); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	count, err = repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}
}

func TestChunkRepo_ListFileNames(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	inserts := []struct {
		id       string
		fileName string
	}{
		{"1", "b.pdf"},
		{"2", "a.docx"},
		{"3", "b.pdf"},
		{"4", "c.pdf"},
	}
	for i, in := range inserts {
		chunk := &ChunkRecord{ID: in.id, Text: "text", FileName: in.fileName, SourceType: "uploaded_doc", Position: i}
		if err := repo.Insert(ctx, chunk); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	names, err := repo.ListFileNames(ctx)
	if err != nil {
		t.Fatalf("ListFileNames() error = %v", err)
	}

	want := []string{"b.pdf", "a.docx", "c.pdf"}
	if len(names) != len(want) {
		t.Fatalf("ListFileNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("ListFileNames()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestChunkRepo_DeleteAll(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	chunk := &ChunkRecord{ID: "x", Text: "text", FileName: "f.pdf", SourceType: "uploaded_doc"}
	if err := repo.Insert(ctx, chunk); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if err := repo.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll() error = %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() after DeleteAll = %d, want 0", count)
	}
}
