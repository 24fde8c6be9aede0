package middleware

import (
	"net/http"

	"github.com/legacyvault/internal/token"
)

// RequireAuth защищает API-маршруты: читает cookie, проверяет токен и кладёт
// user_id и claims в контекст. Сессионного хранилища на сервере нет — проверка
// повторяется на каждом запросе независимо от PageGuard.
func RequireAuth(tokens *token.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := token.FromRequest(r)
			if tok == "" {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			claims, err := tokens.Verify(tok)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}
