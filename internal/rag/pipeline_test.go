package rag

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"docextract-ai/internal/memory"
	"docextract-ai/internal/retrieval"
	"docextract-ai/internal/storage"
	"docextract-ai/internal/vectorstore"
)

// keywordEmbedder maps texts onto fixed unit vectors by keyword, so
// similarity is 1.0 for texts sharing a keyword and 0.0 otherwise.
type keywordEmbedder struct {
	keywords []string
}

func (e *keywordEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, len(e.keywords)+1)
		vec[len(e.keywords)] = 1 // fallback axis for unmatched text
		for j, kw := range e.keywords {
			if strings.Contains(strings.ToLower(text), kw) {
				vec = make([]float32, len(e.keywords)+1)
				vec[j] = 1
				break
			}
		}
		out[i] = vec
	}
	return out, nil
}

type echoGenerator struct{}

func (echoGenerator) Chat(ctx context.Context, prompt string) (string, error) {
	return "<h4>Answer</h4><p>Panel efficiency reached 23 percent.</p>", nil
}

func newPipeline(t *testing.T) (Engine, *memory.Manager) {
	t.Helper()

	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "docstore.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	chunkRepo := storage.NewChunkRepo(db)

	embedder := &keywordEmbedder{keywords: []string{"panel efficiency", "installation costs", "warranty terms"}}
	store := vectorstore.NewFlatStore(filepath.Join(dir, "index"), 4)

	mgr := memory.NewManager(store, chunkRepo, embedder)
	if _, err := mgr.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	retriever := retrieval.NewEngine(embedder, store, chunkRepo)
	return NewEngine(retriever, mgr, echoGenerator{}, 12000), mgr
}

func insertTestDocument(t *testing.T, mgr *memory.Manager) {
	t.Helper()

	chunks := []memory.Chunk{
		{ID: "a-0", Text: "Panel efficiency reached 23 percent in lab tests.", FileName: "A.pdf", SourceType: "uploaded_doc", Position: 0},
		{ID: "a-1", Text: "Installation costs dropped by a third since 2020.", FileName: "A.pdf", SourceType: "uploaded_doc", Position: 1},
		{ID: "a-2", Text: "Warranty terms cover 25 years of operation.", FileName: "A.pdf", SourceType: "uploaded_doc", Position: 2},
	}
	if err := mgr.Insert(context.Background(), chunks); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
}

func TestPipeline_FreshSystemReportsNoDocuments(t *testing.T) {
	engine, _ := newPipeline(t)

	result, err := engine.Answer(context.Background(), "what is the efficiency?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if result.Source != SourceNoDocuments {
		t.Errorf("Source = %q, want %q", result.Source, SourceNoDocuments)
	}
	if result.Answer != noDocumentsMessage {
		t.Errorf("Answer = %q, want no-documents message", result.Answer)
	}
	if len(result.Sources) != 0 {
		t.Errorf("Sources = %v, want empty", result.Sources)
	}
}

func TestPipeline_MatchingQueryAnswersFromDocument(t *testing.T) {
	engine, mgr := newPipeline(t)
	insertTestDocument(t, mgr)

	result, err := engine.Answer(context.Background(), "What is the panel efficiency?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if result.Source != SourceDocumentRAG {
		t.Errorf("Source = %q, want %q", result.Source, SourceDocumentRAG)
	}
	found := false
	for _, s := range result.Sources {
		if s == "A.pdf" {
			found = true
		}
	}
	if !found {
		t.Errorf("Sources = %v, want A.pdf present", result.Sources)
	}
	if !strings.HasPrefix(result.Answer, "<") {
		t.Errorf("Answer = %q, want HTML fragment", result.Answer)
	}
	if result.Confidence <= 0 || result.Confidence > 1 {
		t.Errorf("Confidence = %v, want in (0,1]", result.Confidence)
	}
}

func TestPipeline_UnrelatedQueryNamesNearestDocuments(t *testing.T) {
	engine, mgr := newPipeline(t)
	insertTestDocument(t, mgr)

	result, err := engine.Answer(context.Background(), "recipe for sourdough bread")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if result.Source != SourceNoDocuments {
		t.Errorf("Source = %q, want %q", result.Source, SourceNoDocuments)
	}
	if !strings.Contains(result.Answer, "A.pdf") {
		t.Errorf("Answer = %q, want nearest document named", result.Answer)
	}
}

func TestPipeline_ClearThenQuery(t *testing.T) {
	engine, mgr := newPipeline(t)
	insertTestDocument(t, mgr)

	if err := mgr.Clear(context.Background()); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	result, err := engine.Answer(context.Background(), "What is the panel efficiency?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if result.Source != SourceNoDocuments || result.Answer != noDocumentsMessage {
		t.Errorf("result = %+v, want no-documents after clear", result)
	}
}
