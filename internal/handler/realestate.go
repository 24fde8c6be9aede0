package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/legacyvault/internal/logger"
	"github.com/legacyvault/internal/middleware"
	"github.com/legacyvault/internal/model"
	"github.com/legacyvault/internal/repository"
)

// RealEstateHandler — CRUD объектов недвижимости пользователя.
type RealEstateHandler struct {
	estates *repository.RealEstateRepository
}

func NewRealEstateHandler(estates *repository.RealEstateRepository) *RealEstateHandler {
	return &RealEstateHandler{estates: estates}
}

type realEstateRequest struct {
	Address       string  `json:"address"`
	Price         float64 `json:"price"`
	Bedrooms      int     `json:"bedrooms"`
	Bathrooms     int     `json:"bathrooms"`
	SquareFootage int     `json:"squareFootage"`
	YearBuilt     int     `json:"yearBuilt"`
}

func (req *realEstateRequest) validate() string {
	req.Address = strings.TrimSpace(req.Address)
	switch {
	case req.Address == "":
		return "address is required"
	case req.Price < 0:
		return "price must not be negative"
	case req.Bedrooms < 0 || req.Bathrooms < 0:
		return "bedrooms and bathrooms must not be negative"
	case req.SquareFootage < 0:
		return "squareFootage must not be negative"
	}
	return ""
}

func estateID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *RealEstateHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	var req realEstateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	p := &model.RealEstate{
		UserID:        userID,
		Address:       req.Address,
		Price:         req.Price,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		SquareFootage: req.SquareFootage,
		YearBuilt:     req.YearBuilt,
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.estates.Create(r.Context(), p); err != nil {
		logger.Errorf("real estate create user=%s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to save property")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"property": p})
}

func (h *RealEstateHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	props, err := h.estates.ListByUser(r.Context(), userID)
	if err != nil {
		logger.Errorf("real estate list user=%s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to load properties")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"properties": props})
}

func (h *RealEstateHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, ok := estateID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid property id")
		return
	}
	p, err := h.estates.GetByID(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "property not found")
			return
		}
		logger.Errorf("real estate get %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to load property")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"property": p})
}

func (h *RealEstateHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, ok := estateID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid property id")
		return
	}
	var req realEstateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	p := &model.RealEstate{
		ID:            id,
		UserID:        userID,
		Address:       req.Address,
		Price:         req.Price,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		SquareFootage: req.SquareFootage,
		YearBuilt:     req.YearBuilt,
	}
	if err := h.estates.Update(r.Context(), p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "property not found")
			return
		}
		logger.Errorf("real estate update %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to update property")
		return
	}
	// Update не возвращает created_at; перечитываем строку целиком.
	updated, err := h.estates.GetByID(r.Context(), userID, id)
	if err != nil {
		logger.Errorf("real estate reload %d: %v", id, err)
		writeJSON(w, http.StatusOK, map[string]any{"property": p})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"property": updated})
}

func (h *RealEstateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, ok := estateID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid property id")
		return
	}
	if err := h.estates.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "property not found")
			return
		}
		logger.Errorf("real estate delete %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete property")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
