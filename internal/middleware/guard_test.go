package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/legacyvault/internal/token"
)

func newTokens(t *testing.T) *token.Service {
	t.Helper()
	svc, err := token.New([]byte("test-secret"), time.Hour)
	if err != nil {
		t.Fatalf("token.New: %v", err)
	}
	return svc
}

// expiredToken — токен с exp в прошлом, подписанный тем же секретом.
func expiredToken(t *testing.T) string {
	t.Helper()
	claims := token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		UserID: "42",
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign expired: %v", err)
	}
	return tok
}

func guardRequest(t *testing.T, tokens *token.Service, path, cookie string) (*httptest.ResponseRecorder, *bool) {
	t.Helper()
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})
	r := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		r.AddCookie(&http.Cookie{Name: token.CookieName, Value: cookie})
	}
	w := httptest.NewRecorder()
	PageGuard(tokens)(next).ServeHTTP(w, r)
	return w, &reached
}

func TestPageGuard_NoCookieRedirectsToLogin(t *testing.T) {
	t.Parallel()

	tokens := newTokens(t)
	w, reached := guardRequest(t, tokens, "/dashboard", "")
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d want %d", w.Code, http.StatusSeeOther)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Fatalf("Location: got %q want /login", loc)
	}
	if *reached {
		t.Fatal("downstream handler must not be invoked")
	}
}

func TestPageGuard_ValidTokenOnLoginRedirectsToDashboard(t *testing.T) {
	t.Parallel()

	tokens := newTokens(t)
	tok, err := tokens.Sign("42", "")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	w, reached := guardRequest(t, tokens, "/login", tok)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d want %d", w.Code, http.StatusSeeOther)
	}
	if loc := w.Header().Get("Location"); loc != "/dashboard" {
		t.Fatalf("Location: got %q want /dashboard", loc)
	}
	if *reached {
		t.Fatal("login page handler must not be invoked with a valid session")
	}
}

func TestPageGuard_ExpiredTokenClearsCookie(t *testing.T) {
	t.Parallel()

	tokens := newTokens(t)
	w, reached := guardRequest(t, tokens, "/dashboard", expiredToken(t))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d want %d", w.Code, http.StatusSeeOther)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Fatalf("Location: got %q want /login", loc)
	}
	if *reached {
		t.Fatal("downstream handler must not be invoked")
	}

	var cleared *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == token.CookieName {
			cleared = c
		}
	}
	if cleared == nil {
		t.Fatal("expected Set-Cookie clearing the token cookie")
	}
	if cleared.Value != "" || cleared.MaxAge >= 0 {
		t.Fatalf("cookie not cleared: value=%q maxage=%d", cleared.Value, cleared.MaxAge)
	}
}

func TestPageGuard_AuthAPIPrefixForwardedUnconditionally(t *testing.T) {
	t.Parallel()

	tokens := newTokens(t)
	// Любое значение cookie, даже мусор — запрос под /api/auth/ проходит без проверки.
	w, reached := guardRequest(t, tokens, "/api/auth/login", "garbage")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d want %d", w.Code, http.StatusOK)
	}
	if !*reached {
		t.Fatal("auth API request must be forwarded")
	}
}

func TestPageGuard_ValidTokenForwardsWithClaims(t *testing.T) {
	t.Parallel()

	tokens := newTokens(t)
	tok, err := tokens.Sign("7", "a@b.com")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	var gotUserID, gotHeader string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r.Context())
		gotHeader = r.Header.Get("X-User")
		w.WriteHeader(http.StatusOK)
	})
	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r.AddCookie(&http.Cookie{Name: token.CookieName, Value: tok})
	w := httptest.NewRecorder()
	PageGuard(tokens)(next).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d want %d", w.Code, http.StatusOK)
	}
	if gotUserID != "7" {
		t.Fatalf("context user_id: got %q want %q", gotUserID, "7")
	}
	if gotHeader == "" {
		t.Fatal("expected X-User header with claims payload")
	}
}

func TestPageGuard_RootIsPublic(t *testing.T) {
	t.Parallel()

	tokens := newTokens(t)
	w, reached := guardRequest(t, tokens, "/", "")
	if w.Code != http.StatusOK || !*reached {
		t.Fatalf("root must be public: status %d reached %v", w.Code, *reached)
	}
}

func TestPageGuard_SpoofedUserHeaderStripped(t *testing.T) {
	t.Parallel()

	tokens := newTokens(t)

	// Публичная страница: пришедший от клиента X-User не должен дойти дальше.
	var gotHeader string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-User")
		w.WriteHeader(http.StatusOK)
	})
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-User", `{"userId":"evil"}`)
	w := httptest.NewRecorder()
	PageGuard(tokens)(next).ServeHTTP(w, r)
	if gotHeader != "" {
		t.Fatalf("client-supplied X-User must be stripped on public paths, got %q", gotHeader)
	}

	// Защищённая страница: заголовок заменяется значением из проверенного токена.
	tok, err := tokens.Sign("7", "a@b.com")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	r = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r.Header.Set("X-User", `{"userId":"evil"}`)
	r.AddCookie(&http.Cookie{Name: token.CookieName, Value: tok})
	w = httptest.NewRecorder()
	PageGuard(tokens)(next).ServeHTTP(w, r)
	if strings.Contains(gotHeader, "evil") {
		t.Fatalf("spoofed X-User leaked through: %q", gotHeader)
	}
	if !strings.Contains(gotHeader, `"userId":"7"`) {
		t.Fatalf("X-User must carry verified claims, got %q", gotHeader)
	}
}
