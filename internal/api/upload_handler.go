package api

import (
	"net/http"

	"github.com/whytehoux-projecty/MIS/internal/logger"
	"github.com/whytehoux-projecty/MIS/internal/storage"
)

type UploadHandler struct {
	files       storage.FileStore
	maxFileSize int64
}

func NewUploadHandler(files storage.FileStore, maxFileSizeMB int64) *UploadHandler {
	return &UploadHandler{files: files, maxFileSize: maxFileSizeMB << 20}
}

// Upload accepts a multipart document and returns its opaque id. The rest of
// the system stores only the id.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "file_too_large", "uploaded file exceeds the size limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "missing file field")
		return
	}
	defer file.Close()

	fileID, err := h.files.Save(r.Context(), header.Filename, file)
	if err != nil {
		logger.Error("file upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not store file")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"file_id": fileID,
	})
}
