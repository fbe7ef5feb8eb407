package handlers

import (
	"context"
	"net/http"

	"docextract-ai/internal/contextutil"
)

// MemoryClearer wipes all indexed documents.
type MemoryClearer interface {
	Clear(ctx context.Context) error
}

// ClearHandler handles HTTP requests to clear the document memory.
type ClearHandler struct {
	memory MemoryClearer
}

// NewClearHandler creates a new ClearHandler.
func NewClearHandler(mem MemoryClearer) *ClearHandler {
	return &ClearHandler{memory: mem}
}

// ClearResponse represents the clear response payload.
type ClearResponse struct {
	Status string `json:"status"`
}

// ServeHTTP handles HTTP requests to clear the document memory.
func (h *ClearHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := h.memory.Clear(ctx); err != nil {
		handleError(w, ctx, err, "Failed to clear documents")
		return
	}

	writeJSON(w, http.StatusOK, ClearResponse{Status: "cleared"})
}
