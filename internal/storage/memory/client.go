package memory

import (
	"context"
	"sync"
	"time"
)

const (
	loginRateLimitWindow = 600 * time.Second
	loginRateLimitMax    = 10
)

type item struct {
	val string
	exp time.Time
}

// Client — in-memory замена Redis для -dev: кеш Rentcast и rate limit логина.
type Client struct {
	mu         sync.RWMutex
	properties map[string]item
	limit      map[string][]time.Time
}

func New() *Client {
	return &Client{
		properties: make(map[string]item),
		limit:      make(map[string][]time.Time),
	}
}

func (c *Client) Close() error { return nil }

func (c *Client) GetProperty(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.properties[key]
	if !ok || time.Now().After(v.exp) {
		return "", nil
	}
	return v.val, nil
}

func (c *Client) SetProperty(ctx context.Context, key, payload string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.properties[key] = item{val: payload, exp: time.Now().Add(ttl)}
	return nil
}

func (c *Client) CheckLoginRateLimit(ctx context.Context, email string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	cutoff := now.Add(-loginRateLimitWindow)
	slice := c.limit[email]
	i := 0
	for _, t := range slice {
		if t.After(cutoff) {
			slice[i] = t
			i++
		}
	}
	slice = slice[:i]
	if len(slice) >= loginRateLimitMax {
		c.limit[email] = slice
		return false, nil
	}
	c.limit[email] = append(slice, now)
	return true, nil
}
