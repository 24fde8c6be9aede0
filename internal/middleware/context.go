package middleware

import (
	"context"

	"github.com/legacyvault/internal/token"
)

type contextKey string

const (
	UserIDKey contextKey = "user_id"
	ClaimsKey contextKey = "claims"
)

// GetUserID возвращает user_id из контекста (устанавливается RequireAuth или PageGuard).
func GetUserID(ctx context.Context) string {
	v, _ := ctx.Value(UserIDKey).(string)
	return v
}

// GetClaims возвращает claims сессии из контекста. Для страниц они положены
// guard'ом (guard-asserted): доверять им можно ровно настолько, насколько
// доверяем guard'у; API-хендлеры получают их из собственной проверки в RequireAuth.
func GetClaims(ctx context.Context) *token.Claims {
	v, _ := ctx.Value(ClaimsKey).(*token.Claims)
	return v
}

func withClaims(ctx context.Context, c *token.Claims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, c.UserID)
	return context.WithValue(ctx, ClaimsKey, c)
}
