package memory

import (
	"context"
	"testing"
	"time"
)

func TestPropertyCache(t *testing.T) {
	t.Parallel()

	c := New()
	ctx := context.Background()

	got, err := c.GetProperty(ctx, "addr:123 Main St")
	if err != nil || got != "" {
		t.Fatalf("empty cache: got %q, %v", got, err)
	}

	if err := c.SetProperty(ctx, "addr:123 Main St", `{"id":"p1"}`, time.Minute); err != nil {
		t.Fatalf("SetProperty: %v", err)
	}
	got, err = c.GetProperty(ctx, "addr:123 Main St")
	if err != nil {
		t.Fatalf("GetProperty: %v", err)
	}
	if got != `{"id":"p1"}` {
		t.Fatalf("payload mismatch: got %q", got)
	}
}

func TestPropertyCache_Expiry(t *testing.T) {
	t.Parallel()

	c := New()
	ctx := context.Background()

	if err := c.SetProperty(ctx, "k", "v", -time.Second); err != nil {
		t.Fatalf("SetProperty: %v", err)
	}
	got, err := c.GetProperty(ctx, "k")
	if err != nil || got != "" {
		t.Fatalf("expired entry must be gone: got %q, %v", got, err)
	}
}

func TestLoginRateLimit(t *testing.T) {
	t.Parallel()

	c := New()
	ctx := context.Background()

	for i := 0; i < loginRateLimitMax; i++ {
		ok, err := c.CheckLoginRateLimit(ctx, "a@b.com")
		if err != nil {
			t.Fatalf("CheckLoginRateLimit: %v", err)
		}
		if !ok {
			t.Fatalf("attempt %d must be allowed", i+1)
		}
	}
	ok, err := c.CheckLoginRateLimit(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("CheckLoginRateLimit: %v", err)
	}
	if ok {
		t.Fatal("attempt above the limit must be rejected")
	}

	// Другой email — отдельный счётчик.
	ok, err = c.CheckLoginRateLimit(ctx, "other@b.com")
	if err != nil || !ok {
		t.Fatalf("other email must be allowed: %v, %v", ok, err)
	}
}
