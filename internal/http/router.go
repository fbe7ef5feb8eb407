// Package http wires the API handlers into a router.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docextract-ai/internal/handlers"
	"docextract-ai/internal/rag"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	QAEngine rag.Engine
	Ingestor handlers.DocumentIngestor
	Memory   MemoryManager
}

// MemoryManager combines the memory operations the API exposes.
type MemoryManager interface {
	handlers.MemoryStatusProvider
	handlers.MemoryClearer
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)
	r.Use(LoggerMiddleware)

	askHandler := handlers.NewAskHandler(deps.QAEngine)
	uploadHandler := handlers.NewUploadHandler(deps.Ingestor)
	statusHandler := handlers.NewStatusHandler(deps.Memory)
	clearHandler := handlers.NewClearHandler(deps.Memory)
	healthHandler := handlers.NewHealthHandler(deps.Memory)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/ask", askHandler)
		r.Method(http.MethodPost, "/upload", uploadHandler)
		r.Method(http.MethodGet, "/status", statusHandler)
		r.Method(http.MethodPost, "/clear", clearHandler)
	})
	r.Method(http.MethodGet, "/health", healthHandler)

	return r
}
