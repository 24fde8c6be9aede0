package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/legacyvault/internal/token"
)

func authRequest(t *testing.T, tokens *token.Service, cookie string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	r := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	if cookie != "" {
		r.AddCookie(&http.Cookie{Name: token.CookieName, Value: cookie})
	}
	w := httptest.NewRecorder()
	RequireAuth(tokens)(next).ServeHTTP(w, r)
	return w, gotUserID
}

func TestRequireAuth_MissingCookie(t *testing.T) {
	t.Parallel()

	w, _ := authRequest(t, newTokens(t), "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	t.Parallel()

	w, _ := authRequest(t, newTokens(t), "garbage")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	t.Parallel()

	w, _ := authRequest(t, newTokens(t), expiredToken(t))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuth_ValidToken(t *testing.T) {
	t.Parallel()

	tokens := newTokens(t)
	tok, err := tokens.Sign("7", "a@b.com")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	w, userID := authRequest(t, tokens, tok)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d want %d", w.Code, http.StatusOK)
	}
	if userID != "7" {
		t.Fatalf("context user_id: got %q want %q", userID, "7")
	}
}
