package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/datachat-labs/datachat-engine/pkg/services"
)

// UploadHandler accepts CSV uploads.
type UploadHandler struct {
	uploads     services.UploadService
	maxBodySize int64
	logger      *zap.Logger
}

// NewUploadHandler creates an upload handler. maxFileSizeMB bounds the
// multipart body.
func NewUploadHandler(uploads services.UploadService, maxFileSizeMB int64, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		uploads:     uploads,
		maxBodySize: maxFileSizeMB << 20,
		logger:      logger,
	}
}

// RegisterRoutes registers the upload route on the given mux.
func (h *UploadHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/upload", h.Upload)
}

// Upload handles POST /api/upload: a multipart form with a "file" field
// holding a CSV.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	file, header, err := r.FormFile("file")
	if err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid_upload", "multipart form must contain a \"file\" field")
		return
	}
	defer file.Close()

	dataset, err := h.uploads.UploadCSV(r.Context(), header.Filename, file)
	if err != nil {
		h.logger.Warn("Upload failed",
			zap.String("filename", header.Filename),
			zap.Error(err))
		WriteError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, dataset)
}
