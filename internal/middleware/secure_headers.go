package middleware

import "net/http"

// csp — единая Content-Security-Policy для всех страниц.
// unsafe-eval/unsafe-inline нужны фронту (сборка с инлайн-стилями).
const csp = "default-src 'self'; " +
	"script-src 'self' 'unsafe-eval' 'unsafe-inline'; " +
	"style-src 'self' 'unsafe-inline'; " +
	"img-src 'self' blob: data:; " +
	"font-src 'self'; " +
	"object-src 'none'; " +
	"base-uri 'self'; " +
	"form-action 'self'; " +
	"frame-ancestors 'none'; " +
	"block-all-mixed-content; " +
	"upgrade-insecure-requests; " +
	"connect-src 'self';"

// SecureHeaders ставит базовые security-заголовки на каждый ответ.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", csp)
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
