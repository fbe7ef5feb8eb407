package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"path/filepath"

	"docextract-ai/internal/config"
	"docextract-ai/internal/http"
	"docextract-ai/internal/ingest"
	"docextract-ai/internal/llm"
	"docextract-ai/internal/memory"
	"docextract-ai/internal/rag"
	"docextract-ai/internal/retrieval"
	"docextract-ai/internal/storage"
	"docextract-ai/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	if err := os.MkdirAll(cfg.VectorStoreDir, 0755); err != nil {
		log.Fatalf("Failed to create vector store directory: %v", err)
	}

	// Initialize document store
	dbPath := filepath.Join(cfg.VectorStoreDir, "docstore.db")
	db, err := storage.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Document store initialized", "path", dbPath)

	chunkRepo := storage.NewChunkRepo(db)

	// Select the vector index backend. The flat index keeps its files in a
	// subdirectory so a reset never touches the document store beside it.
	var store vectorstore.VectorStore
	switch cfg.VectorBackend {
	case "qdrant":
		store, err = vectorstore.NewQdrantStore(cfg.QdrantURL, cfg.QdrantCollection, cfg.EmbeddingDimension)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}
		slog.Info("Using Qdrant vector store", "url", cfg.QdrantURL, "collection", cfg.QdrantCollection)
	default:
		store = vectorstore.NewFlatStore(filepath.Join(cfg.VectorStoreDir, "index"), cfg.EmbeddingDimension)
		slog.Info("Using flat vector store", "dir", cfg.VectorStoreDir)
	}

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.EmbeddingDimension)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)

	ctx := context.Background()

	manager := memory.NewManager(store, chunkRepo, embedder)
	initResult, err := manager.Initialize(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize document memory: %v", err)
	}
	slog.Info("Document memory ready", "state", initResult.String(), "dimension", cfg.EmbeddingDimension)

	retriever := retrieval.NewEngine(embedder, store, chunkRepo)
	qaEngine := rag.NewEngine(retriever, manager, llmClient, cfg.ContextMaxChars)
	ingestor := ingest.NewIngestor(cfg.UploadsDir, cfg.MaxUploadMB, cfg.ChunkSize, cfg.ChunkOverlap, manager)
	slog.Info("QA engine initialized")

	deps := &http.Deps{
		QAEngine: qaEngine,
		Ingestor: ingestor,
		Memory:   manager,
	}
	router := http.NewRouter(deps)

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
