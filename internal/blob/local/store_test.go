package local

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/legacyvault/internal/blob"
)

func TestPutOpenDelete(t *testing.T) {
	t.Parallel()

	s := New(t.TempDir())
	ctx := context.Background()

	url, err := s.Put(ctx, "users/2026/9/1/abc.pdf", "application/pdf", strings.NewReader("%PDF-1.7 test"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "" {
		t.Fatalf("local store must not return direct URL, got %q", url)
	}

	obj, err := s.Open(ctx, "users/2026/9/1/abc.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer obj.Body.Close()
	if obj.ContentType != "application/pdf" {
		t.Fatalf("content type mismatch: %q", obj.ContentType)
	}
	data, err := io.ReadAll(obj.Body)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "%PDF-1.7 test" {
		t.Fatalf("payload mismatch: %q", data)
	}

	if err := s.Delete(ctx, "users/2026/9/1/abc.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Open(ctx, "users/2026/9/1/abc.pdf"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("after delete want ErrNotFound, got %v", err)
	}
}

func TestOpenMissing(t *testing.T) {
	t.Parallel()

	s := New(t.TempDir())
	if _, err := s.Open(context.Background(), "no/such/key"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestBadKeyRejected(t *testing.T) {
	t.Parallel()

	s := New(t.TempDir())
	if _, err := s.Put(context.Background(), "../outside", "", strings.NewReader("x")); err == nil {
		t.Fatal("key escaping the root dir must be rejected")
	}
}

func TestDeleteMissingIsNoop(t *testing.T) {
	t.Parallel()

	s := New(t.TempDir())
	if err := s.Delete(context.Background(), "ghost"); err != nil {
		t.Fatalf("Delete of missing key must not fail: %v", err)
	}
}
