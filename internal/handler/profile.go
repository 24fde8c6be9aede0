package handler

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/legacyvault/internal/blob"
	"github.com/legacyvault/internal/logger"
	"github.com/legacyvault/internal/middleware"
	"github.com/legacyvault/internal/repository"
)

// profilePictureExts — фото профиля принимаются только как изображения.
var profilePictureExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// ProfileHandler — профиль пользователя (пока только фото).
type ProfileHandler struct {
	users         *repository.UserRepository
	blobs         blob.Store
	maxUploadSize int64
}

func NewProfileHandler(users *repository.UserRepository, blobs blob.Store, maxUploadSize int64) *ProfileHandler {
	return &ProfileHandler{users: users, blobs: blobs, maxUploadSize: maxUploadSize}
}

// UploadPicture принимает multipart-форму с полем file, сохраняет изображение
// в blob-хранилище и прописывает URL в профиль.
func (h *ProfileHandler) UploadPicture(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
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
	if !profilePictureExts[ext] {
		writeError(w, http.StatusBadRequest, "profile picture must be an image")
		return
	}
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

	key := blob.RandomKey(ext)
	url, err := h.blobs.Put(r.Context(), key, contentType, io.MultiReader(bytes.NewReader(head), file))
	if err != nil {
		logger.Errorf("profile picture blob user=%s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to store picture")
		return
	}
	// Локальное хранилище не даёт прямого URL — файл отдаёт маршрут /uploads/{key}.
	if url == "" {
		url = "/uploads/" + key
	}

	if err := h.users.UpdateAvatar(r.Context(), userID, url); err != nil {
		logger.Errorf("profile picture save user=%s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to save picture")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
