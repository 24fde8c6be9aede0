package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/legacyvault/internal/blob"
	"github.com/legacyvault/internal/logger"
	"github.com/legacyvault/internal/middleware"
	"github.com/legacyvault/internal/model"
	"github.com/legacyvault/internal/repository"
)

// serveTimeout — предел на отдачу одного документа из blob-хранилища.
const serveTimeout = 60 * time.Second

// DocumentHandler — документы пользователя: метаданные в Postgres, содержимое
// в blob-хранилище.
type DocumentHandler struct {
	docs          *repository.DocumentRepository
	blobs         blob.Store
	maxUploadSize int64
}

func NewDocumentHandler(docs *repository.DocumentRepository, blobs blob.Store, maxUploadSize int64) *DocumentHandler {
	return &DocumentHandler{docs: docs, blobs: blobs, maxUploadSize: maxUploadSize}
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	docs, err := h.docs.ListByUser(r.Context(), userID)
	if err != nil {
		logger.Errorf("documents list user=%s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to load documents")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (h *DocumentHandler) Count(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	n, err := h.docs.CountByUser(r.Context(), userID)
	if err != nil {
		logger.Errorf("documents count user=%s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to count documents")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

// Upload принимает multipart-форму: file (обязательно), name, type, tags (JSON-массив).
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form or file too large")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if blob.BlockedExt[ext] {
		writeError(w, http.StatusBadRequest, "file type not allowed")
		return
	}

	// Сигнатура проверяется по первым байтам, дальше файл дочитывается потоком.
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}
	head = head[:n]
	if !blob.MatchMagic(ext, head) {
		writeError(w, http.StatusBadRequest, "file content does not match its extension")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = blob.ContentTypeByExt(ext)
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = header.Filename
	}
	docType := strings.TrimSpace(r.FormValue("type"))
	var tags []string
	if raw := r.FormValue("tags"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			writeError(w, http.StatusBadRequest, "tags must be a JSON array of strings")
			return
		}
	}
	if tags == nil {
		tags = []string{}
	}

	key := blob.RandomKey(ext)
	url, err := h.blobs.Put(r.Context(), key, contentType, io.MultiReader(bytes.NewReader(head), file))
	if err != nil {
		logger.Errorf("document upload blob user=%s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	now := time.Now().UTC()
	doc := &model.Document{
		ID:         uuid.NewString(),
		UserID:     userID,
		Name:       name,
		Type:       docType,
		StorageKey: key,
		URL:        url,
		Size:       header.Size,
		MimeType:   contentType,
		Tags:       tags,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := h.docs.Create(r.Context(), doc); err != nil {
		logger.Errorf("document insert user=%s: %v", userID, err)
		// Строки нет — содержимое не должно остаться сиротой.
		if delErr := h.blobs.Delete(context.Background(), key); delErr != nil {
			logger.Errorf("document upload rollback %s: %v", key, delErr)
		}
		writeError(w, http.StatusInternalServerError, "failed to save document")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"document": doc})
}

// Serve отдаёт содержимое документа. Для документов с внешним URL (S3) клиент
// ходит по URL напрямую, этот маршрут нужен локальному хранилищу.
func (h *DocumentHandler) Serve(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")

	doc, err := h.docs.GetByID(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		logger.Errorf("document get %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to load document")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serveTimeout)
	defer cancel()
	obj, err := h.blobs.Open(ctx, doc.StorageKey)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document content not found")
			return
		}
		logger.Errorf("document open %s: %v", doc.StorageKey, err)
		writeError(w, http.StatusInternalServerError, "failed to open document")
		return
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = doc.MimeType
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if name := blob.SafeFilename(doc.Name); name != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
	}
	if obj.Size > 0 {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", obj.Size))
	}
	if _, err := io.Copy(w, obj.Body); err != nil {
		logger.Errorf("document serve %s: %v", id, err)
	}
}

// Delete удаляет строку и содержимое. Ошибка удаления blob только логируется,
// строка к этому моменту уже удалена.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")

	doc, err := h.docs.GetByID(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		logger.Errorf("document get %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}
	if err := h.docs.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		logger.Errorf("document delete %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}
	if err := h.blobs.Delete(r.Context(), doc.StorageKey); err != nil {
		logger.Errorf("document delete blob %s: %v", doc.StorageKey, err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
