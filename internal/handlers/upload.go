package handlers

import (
	"context"
	"net/http"

	"docextract-ai/internal/contextutil"
	"docextract-ai/internal/ingest"
)

// maxMultipartMemory bounds how much of a parsed form stays in memory;
// larger parts spill to disk.
const maxMultipartMemory = 32 << 20

// DocumentIngestor accepts upload batches for indexing.
type DocumentIngestor interface {
	Ingest(ctx context.Context, uploads []ingest.Upload) (ingest.Report, error)
}

// UploadHandler handles HTTP requests for document uploads.
type UploadHandler struct {
	ingestor DocumentIngestor
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(ingestor DocumentIngestor) *UploadHandler {
	return &UploadHandler{ingestor: ingestor}
}

// ServeHTTP handles multipart document uploads under the "files" field.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		logger.WarnContext(ctx, "invalid multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "No files provided under field 'files'")
		return
	}

	uploads := make([]ingest.Upload, 0, len(headers))
	var closers []func() error
	defer func() {
		for _, close := range closers {
			_ = close()
		}
	}()

	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			logger.WarnContext(ctx, "failed to open uploaded file", "file", header.Filename, "error", err)
			writeError(w, http.StatusBadRequest, "Failed to read uploaded file")
			return
		}
		closers = append(closers, f.Close)
		uploads = append(uploads, ingest.Upload{
			Name:   header.Filename,
			Size:   header.Size,
			Reader: f,
		})
	}

	report, err := h.ingestor.Ingest(ctx, uploads)
	if err != nil {
		handleError(w, ctx, err, "Failed to ingest uploaded files")
		return
	}

	writeJSON(w, http.StatusOK, report)
}
