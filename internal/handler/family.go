package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/legacyvault/internal/logger"
	"github.com/legacyvault/internal/middleware"
	"github.com/legacyvault/internal/model"
	"github.com/legacyvault/internal/repository"
)

// FamilyHandler — члены семьи: кому и что будет доступно из кабинета владельца.
type FamilyHandler struct {
	members *repository.FamilyRepository
}

func NewFamilyHandler(members *repository.FamilyRepository) *FamilyHandler {
	return &FamilyHandler{members: members}
}

type familyMemberRequest struct {
	Name           string                  `json:"name"`
	Relationship   string                  `json:"relationship"`
	Email          string                  `json:"email"`
	Phone          string                  `json:"phone"`
	Address        string                  `json:"address"`
	AdditionalInfo string                  `json:"additional_info"`
	ProfilePicture string                  `json:"profile_picture"`
	Permissions    model.FamilyPermissions `json:"permissions"`
}

// validate повторяет схему формы: обязательные поля, email с @, телефон не короче 10 символов.
func (req *familyMemberRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	req.Relationship = strings.TrimSpace(req.Relationship)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)
	switch {
	case req.Name == "":
		return "name is required"
	case req.Relationship == "":
		return "relationship is required"
	case req.Email == "" || !strings.Contains(req.Email, "@"):
		return "valid email is required"
	case len(req.Phone) < 10:
		return "phone must be at least 10 digits"
	case req.Address == "":
		return "address is required"
	}
	return ""
}

func (h *FamilyHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	var req familyMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	m := &model.FamilyMember{
		ID:             uuid.NewString(),
		UserID:         userID,
		Name:           req.Name,
		Relationship:   req.Relationship,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		AdditionalInfo: req.AdditionalInfo,
		ProfilePicture: req.ProfilePicture,
		Permissions:    req.Permissions,
		CreatedAt:      time.Now().UTC(),
	}
	if err := h.members.Create(r.Context(), m); err != nil {
		logger.Errorf("family create user=%s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to save family member")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"member": m})
}

func (h *FamilyHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	members, err := h.members.ListByUser(r.Context(), userID)
	if err != nil {
		logger.Errorf("family list user=%s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to load family members")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": members})
}

func (h *FamilyHandler) Count(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	n, err := h.members.CountByUser(r.Context(), userID)
	if err != nil {
		logger.Errorf("family count user=%s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to count family members")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (h *FamilyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")
	if err := h.members.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "family member not found")
			return
		}
		logger.Errorf("family delete %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete family member")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
