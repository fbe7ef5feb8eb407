// Package handlers exposes the document question-answering API over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"docextract-ai/internal/contextutil"
	"docextract-ai/internal/llm"
	"docextract-ai/internal/vectorstore"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}

// handleError maps pipeline failures onto HTTP statuses: upstream model
// failures become 502, vector store outages 503, everything else 500.
func handleError(w http.ResponseWriter, ctx context.Context, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "request failed", "error", err)

	if errors.Is(err, llm.ErrService) {
		writeError(w, http.StatusBadGateway, "Model service error")
		return
	}
	if errors.Is(err, vectorstore.ErrUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "Vector store unavailable")
		return
	}
	writeError(w, http.StatusInternalServerError, defaultMsg)
}
