package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/legacyvault/internal/token"
)

// Цепочка как в main: RateLimitAPI (по IP, до аутентификации) → RequireAuth →
// RateLimitUser (по user_id из контекста).
func rateLimitChain(tokens *token.Service) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return RateLimitAPI(RequireAuth(tokens)(RateLimitUser(next)))
}

func TestRateLimitUser_EnforcedAcrossIPs(t *testing.T) {
	tokens := newTokens(t)
	tok, err := tokens.Sign("rate-limited-user", "")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	chain := rateLimitChain(tokens)

	// Каждый запрос с нового IP — лимит по IP не мешает, срабатывать должен
	// лимит по пользователю.
	got429 := 0
	for i := 0; i < rateLimitMaxUser+20; i++ {
		r := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
		r.Header.Set("X-Real-Ip", fmt.Sprintf("10.1.%d.%d", i/250, i%250+1))
		r.AddCookie(&http.Cookie{Name: token.CookieName, Value: tok})
		w := httptest.NewRecorder()
		chain.ServeHTTP(w, r)
		switch w.Code {
		case http.StatusOK:
		case http.StatusTooManyRequests:
			got429++
		default:
			t.Fatalf("request %d: unexpected status %d", i, w.Code)
		}
	}
	if got429 == 0 {
		t.Fatalf("per-user limit (%d/min) never produced 429", rateLimitMaxUser)
	}
}

func TestRateLimitAPI_SkipsNonAPIPaths(t *testing.T) {
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})
	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	w := httptest.NewRecorder()
	RateLimitAPI(next).ServeHTTP(w, r)
	if !reached || w.Code != http.StatusOK {
		t.Fatalf("page request must bypass the API limiter: reached=%v code=%d", reached, w.Code)
	}
}

func TestRateLimitUser_NoUserInContextPasses(t *testing.T) {
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})
	r := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	w := httptest.NewRecorder()
	RateLimitUser(next).ServeHTTP(w, r)
	if !reached {
		t.Fatal("request without user_id must pass through")
	}
}
