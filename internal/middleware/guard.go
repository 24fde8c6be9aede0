package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/legacyvault/internal/logger"
	"github.com/legacyvault/internal/token"
)

const (
	loginPath     = "/login"
	signupPath    = "/signup"
	dashboardPath = "/dashboard"
)

// Публичные страницы и префиксы. Всё под /api/ для guard'а публично:
// API-хендлеры проверяют cookie сами (через RequireAuth), и им нужен 401, а не редирект.
var guardPublicPaths = map[string]bool{
	"/":           true,
	loginPath:     true,
	signupPath:    true,
	"/favicon.ico": true,
}

var guardPublicPrefixes = []string{"/api/", "/static/", "/assets/", "/fonts/"}

func isPublicPath(path string) bool {
	if guardPublicPaths[path] {
		return true
	}
	for _, p := range guardPublicPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// PageGuard гейтит страницы до их рендера. Для каждого запроса ровно один исход:
// пропустить дальше, редирект на /login (с очисткой cookie при битом токене)
// или редирект на /dashboard (валидная сессия не должна видеть форму логина).
func PageGuard(tokens *token.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			// X-User ставит только guard; пришедший от клиента заголовок удаляется.
			r.Header.Del("X-User")

			if isPublicPath(path) {
				// Залогиненного со страниц логина/регистрации уводим на дашборд.
				if path == loginPath || path == signupPath {
					if tok := token.FromRequest(r); tok != "" {
						if _, err := tokens.Verify(tok); err == nil {
							http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
							return
						}
					}
				}
				next.ServeHTTP(w, r)
				return
			}

			tok := token.FromRequest(r)
			if tok == "" {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}

			claims, err := tokens.Verify(tok)
			if err != nil {
				// Битую cookie обязательно чистим: иначе каждый следующий запрос
				// повторял бы ту же неудачную проверку.
				token.ClearSessionCookie(w)
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}

			// Claims кладём в контекст и в заголовок для страничного слоя.
			// Это оптимизация, не граница доверия: API-хендлеры всё равно
			// проверяют токен сами.
			if payload, err := json.Marshal(claims); err == nil {
				r.Header.Set("X-User", string(payload))
			} else {
				logger.Errorf("guard: marshal claims: %v", err)
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}
