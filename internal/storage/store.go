package storage

import (
	"context"
	"time"
)

// Store — кеш ответов Rentcast и rate limit попыток логина.
// Реализации: redis.Client, memory.Client (для -dev без Redis).
type Store interface {
	// GetProperty возвращает закешированный JSON-ответ Rentcast ("" — нет в кеше).
	GetProperty(ctx context.Context, key string) (string, error)
	// SetProperty кеширует JSON-ответ с TTL.
	SetProperty(ctx context.Context, key, payload string, ttl time.Duration) error
	// CheckLoginRateLimit считает попытки логина по email в окне; false — лимит исчерпан.
	CheckLoginRateLimit(ctx context.Context, email string) (allowed bool, err error)
	Close() error
}
