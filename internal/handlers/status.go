package handlers

import (
	"context"
	"net/http"

	"docextract-ai/internal/contextutil"
	"docextract-ai/internal/memory"
)

// MemoryStatusProvider reports the current memory contents.
type MemoryStatusProvider interface {
	Status(ctx context.Context) (memory.Status, error)
}

// StatusHandler handles HTTP requests for index status.
type StatusHandler struct {
	memory MemoryStatusProvider
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(mem MemoryStatusProvider) *StatusHandler {
	return &StatusHandler{memory: mem}
}

// ServeHTTP handles HTTP requests for index status.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	status, err := h.memory.Status(ctx)
	if err != nil {
		handleError(w, ctx, err, "Failed to read status")
		return
	}

	writeJSON(w, http.StatusOK, status)
}
