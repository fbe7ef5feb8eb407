package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"docextract-ai/internal/llm"
	"docextract-ai/internal/rag"
	"docextract-ai/internal/vectorstore"
)

type fakeQAEngine struct {
	result rag.AnswerResult
	err    error
	query  string
}

func (f *fakeQAEngine) Answer(ctx context.Context, query string) (rag.AnswerResult, error) {
	f.query = query
	return f.result, f.err
}

func TestAskHandler_Success(t *testing.T) {
	engine := &fakeQAEngine{result: rag.AnswerResult{
		Query:      "what changed?",
		Answer:     "<p>Everything.</p>",
		Source:     rag.SourceDocumentRAG,
		Confidence: 0.75,
		Sources:    []string{"a.pdf"},
	}}
	handler := NewAskHandler(engine)

	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"query":"what changed?"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var result rag.AnswerResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Answer != "<p>Everything.</p>" || result.Source != rag.SourceDocumentRAG {
		t.Errorf("response = %+v", result)
	}
	if engine.query != "what changed?" {
		t.Errorf("engine received query %q", engine.query)
	}
}

func TestAskHandler_EmptyQuery(t *testing.T) {
	handler := NewAskHandler(&fakeQAEngine{})

	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"query":"  "}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAskHandler_InvalidBody(t *testing.T) {
	handler := NewAskHandler(&fakeQAEngine{})

	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAskHandler_MethodNotAllowed(t *testing.T) {
	handler := NewAskHandler(&fakeQAEngine{})

	req := httptest.NewRequest(http.MethodGet, "/api/ask", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestAskHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"llm failure", fmt.Errorf("draft failed: %w", llm.ErrService), http.StatusBadGateway},
		{"vector store failure", fmt.Errorf("status failed: %w", vectorstore.ErrUnavailable), http.StatusServiceUnavailable},
		{"unknown failure", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAskHandler(&fakeQAEngine{err: tt.err})

			req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"query":"q"}`))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if resp.Error == "" {
				t.Error("error message is empty")
			}
		})
	}
}
