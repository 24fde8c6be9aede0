package token

import (
	"net/http"
	"os"
	"time"
)

// CookieName — имя сессионной cookie.
const CookieName = "token"

// SetSessionCookie ставит HTTP-only cookie с токеном.
// MaxAge равен сроку жизни токена — cookie и exp в JWT истекают одновременно.
func SetSessionCookie(w http.ResponseWriter, tok string, lifetime time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   os.Getenv("APP_ENV") == "production",
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(lifetime.Seconds()),
	})
}

// ClearSessionCookie сбрасывает cookie: пустое значение и срок в прошлом.
// Параметры (Path и пр.) совпадают с SetSessionCookie, иначе браузер не удалит её.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   os.Getenv("APP_ENV") == "production",
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

// FromRequest возвращает токен из cookie запроса ("" — cookie нет).
func FromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
