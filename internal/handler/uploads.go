package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/legacyvault/internal/blob"
	"github.com/legacyvault/internal/logger"
)

// ServeUploads отдаёт объекты локального blob-хранилища по пути /uploads/{key}.
// Монтируется только в локальном режиме: с S3 клиенты ходят по публичному URL бакета.
func ServeUploads(blobs blob.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "*")
		if key == "" {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		obj, err := blobs.Open(r.Context(), key)
		if err != nil {
			if errors.Is(err, blob.ErrNotFound) {
				writeError(w, http.StatusNotFound, "not found")
				return
			}
			logger.Errorf("uploads serve %s: %v", key, err)
			writeError(w, http.StatusInternalServerError, "failed to open file")
			return
		}
		defer obj.Body.Close()
		if obj.ContentType != "" {
			w.Header().Set("Content-Type", obj.ContentType)
		}
		if _, err := io.Copy(w, obj.Body); err != nil {
			logger.Errorf("uploads copy %s: %v", key, err)
		}
	}
}
