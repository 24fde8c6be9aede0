package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/legacyvault/internal/logger"
)

// Rate limit логина: 10 попыток / 10 минут на email (защита от перебора пароля).
const (
	LoginRateLimitWindow = 600 * time.Second
	LoginRateLimitMax    = 10
)

type Client struct {
	cli *redis.Client
}

func New(ctx context.Context, url string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis parse url: %w", err)
	}
	cli := redis.NewClient(opts)
	if err := cli.Ping(ctx).Err(); err != nil {
		if closeErr := cli.Close(); closeErr != nil {
			return nil, fmt.Errorf("redis ping: %w (close: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{cli: cli}, nil
}

func (c *Client) Close() error {
	return c.cli.Close()
}

// GetProperty возвращает закешированный ответ Rentcast по ключу property:{key}.
func (c *Client) GetProperty(ctx context.Context, key string) (string, error) {
	val, err := c.cli.Get(ctx, "property:"+key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// SetProperty кеширует ответ Rentcast; TTL задаёт вызывающий (квота API ограничена).
func (c *Client) SetProperty(ctx context.Context, key, payload string, ttl time.Duration) error {
	return c.cli.Set(ctx, "property:"+key, payload, ttl).Err()
}

// CheckLoginRateLimit проверяет login_limit:{email}: макс. LoginRateLimitMax попыток за окно.
// При превышении — HTTP 429 на логине.
func (c *Client) CheckLoginRateLimit(ctx context.Context, email string) (allowed bool, err error) {
	key := "login_limit:" + email
	n, err := c.cli.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		// Без TTL счётчик не сбросится и email останется заблокированным навсегда.
		if err := c.cli.Expire(ctx, key, LoginRateLimitWindow).Err(); err != nil {
			logger.Errorf("login rate limit expire %s: %v", key, err)
		}
	}
	return n <= int64(LoginRateLimitMax), nil
}
