package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/legacyvault/internal/logger"
	"github.com/legacyvault/internal/rentcast"
	"github.com/legacyvault/internal/storage"
)

// propertyCacheTTL — срок жизни закешированных ответов Rentcast.
// Данные о недвижимости меняются редко, квота внешнего API — дорогая.
const propertyCacheTTL = 12 * time.Hour

// PropertyHandler — поиск данных о недвижимости через Rentcast с кешем в storage.Store.
type PropertyHandler struct {
	rc    *rentcast.Client
	store storage.Store
}

func NewPropertyHandler(rc *rentcast.Client, store storage.Store) *PropertyHandler {
	return &PropertyHandler{rc: rc, store: store}
}

func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	const cacheKey = "list"
	if cached, err := h.store.GetProperty(r.Context(), cacheKey); err == nil && cached != "" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(cached))
		return
	}

	props, err := h.rc.Properties(r.Context())
	if err != nil {
		logger.Errorf("properties list: %v", err)
		writeError(w, http.StatusBadGateway, "property service unavailable")
		return
	}
	payload, err := json.Marshal(map[string]any{"properties": props})
	if err != nil {
		logger.Errorf("properties marshal: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load properties")
		return
	}
	if err := h.store.SetProperty(r.Context(), cacheKey, string(payload), propertyCacheTTL); err != nil {
		logger.Errorf("properties cache set: %v", err)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

// Search ищет объект по адресу: ?address=...
func (h *PropertyHandler) Search(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		writeError(w, http.StatusBadRequest, "address is required")
		return
	}
	if !h.rc.Enabled() {
		writeError(w, http.StatusNotFound, "property not found")
		return
	}

	cacheKey := "addr:" + strings.ToLower(address)
	if cached, err := h.store.GetProperty(r.Context(), cacheKey); err == nil && cached != "" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(cached))
		return
	}

	p, err := h.rc.PropertyByAddress(r.Context(), address)
	if err != nil {
		if errors.Is(err, rentcast.ErrNotFound) {
			writeError(w, http.StatusNotFound, "property not found")
			return
		}
		logger.Errorf("property search %q: %v", address, err)
		writeError(w, http.StatusBadGateway, "property service unavailable")
		return
	}
	payload, err := json.Marshal(map[string]any{"property": p})
	if err != nil {
		logger.Errorf("property marshal: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load property")
		return
	}
	if err := h.store.SetProperty(r.Context(), cacheKey, string(payload), propertyCacheTTL); err != nil {
		logger.Errorf("property cache set: %v", err)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}
