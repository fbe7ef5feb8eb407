// Package rag answers questions over the indexed documents via
// retrieve-then-generate with a validation pass.
package rag

import (
	"context"
	"fmt"
	"strings"

	"docextract-ai/internal/contextutil"
	"docextract-ai/internal/memory"
	"docextract-ai/internal/retrieval"
)

// Source labels for AnswerResult.
const (
	SourceDocumentRAG = "document_rag"
	SourceNoDocuments = "no_documents"
)

// noInfoSentinel is the phrase the model is instructed to reply with when
// the context does not support an answer.
const noInfoSentinel = "No info in docs about the asked question."

// noDocumentsMessage is returned when nothing has been uploaded yet.
const noDocumentsMessage = "No documents uploaded yet. Please upload PDF/DOCX and try again."

// Fixed retrieval parameters for the answer pipeline. The relaxed set is
// used only to surface the nearest document names when the strict pass
// finds nothing.
const (
	answerTopK         = 14
	answerRerankK      = 8
	answerMinRelevance = 0.35

	nearestTopK    = 5
	nearestRerankK = 3
)

const systemPrompt = "You are a precise assistant that answers ONLY using the provided context. " +
	"If the answer is not fully supported by the context, respond: 'No info in docs about the asked question.' " +
	"Output STRICT HTML only (no markdown). Use <h4>, <p>, <ul>, <li>. Keep paragraphs short. " +
	"Do not insert extra blank lines or empty elements. No inline styles/scripts."

// AnswerResult is the outcome of answering one query.
type AnswerResult struct {
	Query      string   `json:"query"`
	Answer     string   `json:"answer"`
	Source     string   `json:"source"`
	Confidence float64  `json:"confidence"`
	Sources    []string `json:"sources"`
}

// Retriever finds relevant chunks for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK, rerankK int, minRelevance float64) ([]retrieval.RetrievedChunk, error)
}

// StatusProvider reports whether any documents are indexed.
type StatusProvider interface {
	Status(ctx context.Context) (memory.Status, error)
}

// Generator produces a completion for a prompt.
type Generator interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

// Engine answers questions over the indexed documents.
type Engine interface {
	Answer(ctx context.Context, query string) (AnswerResult, error)
}

type qaEngine struct {
	retriever       Retriever
	memory          StatusProvider
	generator       Generator
	maxContextChars int
}

// NewEngine creates a question-answering engine.
func NewEngine(retriever Retriever, mem StatusProvider, generator Generator, maxContextChars int) Engine {
	return &qaEngine{
		retriever:       retriever,
		memory:          mem,
		generator:       generator,
		maxContextChars: maxContextChars,
	}
}

// Answer retrieves relevant chunks and generates a validated answer.
// Generation failures propagate to the caller; the query is not retried.
func (e *qaEngine) Answer(ctx context.Context, query string) (AnswerResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	chunks, err := e.retriever.Retrieve(ctx, query, answerTopK, answerRerankK, answerMinRelevance)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("failed to retrieve chunks: %w", err)
	}

	if len(chunks) == 0 {
		return e.answerWithoutChunks(ctx, query)
	}

	contextText, sources := CompressChunks(chunks, e.maxContextChars)

	draft, err := e.generator.Chat(ctx, buildDraftPrompt(query, contextText))
	if err != nil {
		return AnswerResult{}, fmt.Errorf("failed to generate draft answer: %w", err)
	}

	validated, err := e.generator.Chat(ctx, buildValidationPrompt(query, contextText, draft))
	if err != nil {
		return AnswerResult{}, fmt.Errorf("failed to validate answer: %w", err)
	}

	result := AnswerResult{
		Query:      query,
		Answer:     ensureHTMLFragment(validated),
		Source:     SourceDocumentRAG,
		Confidence: Confidence(chunks),
		Sources:    sources,
	}
	logger.InfoContext(ctx, "query answered",
		"chunks", len(chunks), "sources", len(sources), "confidence", result.Confidence)
	return result, nil
}

// answerWithoutChunks builds the no-match reply. When documents exist, a
// relaxed retrieval pass surfaces the nearest file names so the message can
// point the user at what is indexed.
func (e *qaEngine) answerWithoutChunks(ctx context.Context, query string) (AnswerResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	status, err := e.memory.Status(ctx)
	if err != nil {
		logger.WarnContext(ctx, "failed to read memory status", "error", err)
	}

	if !status.HasData {
		return AnswerResult{
			Query:      query,
			Answer:     noDocumentsMessage,
			Source:     SourceNoDocuments,
			Confidence: 0,
			Sources:    []string{},
		}, nil
	}

	nearest := []string{}
	near, err := e.retriever.Retrieve(ctx, query, nearestTopK, nearestRerankK, 0.0)
	if err != nil {
		logger.WarnContext(ctx, "failed to retrieve nearest documents", "error", err)
	}
	seen := make(map[string]bool)
	for _, c := range near {
		fileName := c.FileName
		if fileName == "" {
			fileName = "unknown"
		}
		if seen[fileName] {
			continue
		}
		seen[fileName] = true
		nearest = append(nearest, fileName)
	}

	qshort := query
	if runes := []rune(query); len(runes) > 70 {
		qshort = string(runes[:70]) + "…"
	}

	message := fmt.Sprintf("No info in docs about the asked question: '%s'.", qshort)
	if len(nearest) > 0 {
		message = fmt.Sprintf("No info in docs about the asked question: '%s'. Closest documents: %s.",
			qshort, strings.Join(nearest, ", "))
	}

	return AnswerResult{
		Query:      query,
		Answer:     message,
		Source:     SourceNoDocuments,
		Confidence: 0,
		Sources:    nearest,
	}, nil
}

func buildDraftPrompt(query, contextText string) string {
	return fmt.Sprintf("%s\n\nContext:\n%s\n\nQuestion: %s\n\n"+
		"Return ONLY valid HTML fragment following these rules:\n"+
		"- Use <h4> for section headings\n"+
		"- Use <p> for short paragraphs (1-3 lines)\n"+
		"- Use <ul><li> for bullet lists; no blank lines between <li>\n"+
		"- Do not include <html>, <body>, styles, or scripts\n"+
		"- No content beyond what is supported by the context\n"+
		"- Do NOT add any file name citations like [filename] or similar",
		systemPrompt, contextText, query)
}

func buildValidationPrompt(query, contextText, draft string) string {
	return fmt.Sprintf("Validate the following answer STRICTLY against the context. "+
		"Remove any claims not supported by the context. If little is supported, reply: '%s'\n\n"+
		"Context:\n%s\n\nQuestion: %s\n\nDraft Answer:\n%s\n\n"+
		"Return ONLY the corrected final answer as a clean HTML fragment (<h4>, <p>, <ul>, <li>), no extra whitespace. "+
		"Do NOT add any file name citations like [filename] or similar.",
		noInfoSentinel, contextText, query, draft)
}
