package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/legacyvault/internal/logger"
	"github.com/legacyvault/internal/model"
	"github.com/legacyvault/internal/repository"
	"github.com/legacyvault/internal/storage"
	"github.com/legacyvault/internal/token"
)

// AuthHandler — регистрация, вход и выход по паролю. Сессия — JWT в HTTP-only
// cookie; срок cookie совпадает со сроком токена.
type AuthHandler struct {
	users  *repository.UserRepository
	tokens *token.Service
	store  storage.Store
}

func NewAuthHandler(users *repository.UserRepository, tokens *token.Service, store storage.Store) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, store: store}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	User *model.UserPublic `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "invalid email")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	if _, err := h.users.GetByEmail(r.Context(), req.Email); err == nil {
		writeError(w, http.StatusBadRequest, "email already registered")
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		logger.Errorf("register lookup %s: %v", req.Email, err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Errorf("register hash: %v", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	u := &model.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.users.Create(r.Context(), u); err != nil {
		logger.Errorf("register create %s: %v", req.Email, err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	tok, err := h.tokens.Sign(u.ID, u.Email)
	if err != nil {
		logger.Errorf("register sign %s: %v", u.ID, err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	token.SetSessionCookie(w, tok, h.tokens.Lifetime())
	pub := u.ToPublic()
	writeJSON(w, http.StatusCreated, userResponse{User: &pub})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	allowed, err := h.store.CheckLoginRateLimit(r.Context(), req.Email)
	if err != nil {
		// Недоступный Redis не должен блокировать вход.
		logger.Errorf("login rate limit %s: %v", req.Email, err)
		allowed = true
	}
	if !allowed {
		writeError(w, http.StatusTooManyRequests, "too many login attempts, try again later")
		return
	}

	u, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		logger.Errorf("login lookup %s: %v", req.Email, err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	tok, err := h.tokens.Sign(u.ID, u.Email)
	if err != nil {
		logger.Errorf("login sign %s: %v", u.ID, err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	token.SetSessionCookie(w, tok, h.tokens.Lifetime())
	pub := u.ToPublic()
	writeJSON(w, http.StatusOK, userResponse{User: &pub})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Me возвращает профиль по cookie. Без cookie или с невалидным токеном — не
// ошибка, а {"user": null}: фронт по этому ответу показывает экран логина.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	tok := token.FromRequest(r)
	if tok == "" {
		writeJSON(w, http.StatusOK, userResponse{User: nil})
		return
	}
	claims, err := h.tokens.Verify(tok)
	if err != nil {
		token.ClearSessionCookie(w)
		writeJSON(w, http.StatusOK, userResponse{User: nil})
		return
	}
	u, err := h.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			token.ClearSessionCookie(w)
			writeJSON(w, http.StatusOK, userResponse{User: nil})
			return
		}
		logger.Errorf("me load %s: %v", claims.UserID, err)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	pub := u.ToPublic()
	writeJSON(w, http.StatusOK, userResponse{User: &pub})
}
