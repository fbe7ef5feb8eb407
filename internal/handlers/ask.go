package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"docextract-ai/internal/contextutil"
	"docextract-ai/internal/rag"
)

// AskHandler handles HTTP requests for question answering.
type AskHandler struct {
	qaEngine rag.Engine
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(qaEngine rag.Engine) *AskHandler {
	return &AskHandler{qaEngine: qaEngine}
}

// AskRequest represents the HTTP request payload for a question.
type AskRequest struct {
	Query string `json:"query"`
}

// ServeHTTP handles HTTP requests for question answering.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "Query must not be empty")
		return
	}

	result, err := h.qaEngine.Answer(ctx, req.Query)
	if err != nil {
		handleError(w, ctx, err, "Failed to answer query")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
