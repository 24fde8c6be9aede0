// Package local — blob-хранилище в локальном каталоге для -dev (без S3).
package local

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/legacyvault/internal/blob"
)

// Store хранит объекты в dir; ключи с "/" превращаются в подкаталоги.
// Содержимое лежит в сжатом виде (.gz) для экономии места, content type — в
// соседнем файле .ct.
type Store struct {
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Close() error { return nil }

// path нормализует ключ внутрь s.dir; выход из каталога (..) запрещён.
func (s *Store) path(key string) (string, error) {
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("local: bad key %q", key)
	}
	return filepath.Join(s.dir, filepath.Clean("/"+key)), nil
}

func (s *Store) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	dst, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("local put: mkdir: %w", err)
	}

	f, err := os.Create(dst + ".gz")
	if err != nil {
		return "", fmt.Errorf("local put: create: %w", err)
	}
	gz := gzip.NewWriter(f)
	if err := copyWithContext(ctx, gz, r); err != nil {
		gz.Close()
		f.Close()
		os.Remove(dst + ".gz")
		return "", err
	}
	if err := gz.Close(); err != nil {
		f.Close()
		os.Remove(dst + ".gz")
		return "", fmt.Errorf("local put: gzip close: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst + ".gz")
		return "", fmt.Errorf("local put: close: %w", err)
	}
	if contentType != "" {
		if err := os.WriteFile(dst+".ct", []byte(contentType), 0o644); err != nil {
			os.Remove(dst + ".gz")
			return "", fmt.Errorf("local put: content type: %w", err)
		}
	}
	// Прямого URL нет — файл отдаёт API по id документа.
	return "", nil
}

func (s *Store) Open(ctx context.Context, key string) (*blob.Object, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p + ".gz")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, blob.ErrNotFound
		}
		return nil, fmt.Errorf("local open: %w", err)
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("local open: gzip: %w", err)
	}
	contentType := ""
	if ct, err := os.ReadFile(p + ".ct"); err == nil {
		contentType = string(ct)
	}
	return &blob.Object{
		ContentType: contentType,
		Body:        readCloser{gz, f},
	}, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p + ".gz"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("local delete: %w", err)
	}
	os.Remove(p + ".ct")
	return nil
}

// readCloser закрывает и gzip-reader, и нижележащий файл.
type readCloser struct {
	gz *gzip.Reader
	f  *os.File
}

func (r readCloser) Read(p []byte) (int, error) { return r.gz.Read(p) }

func (r readCloser) Close() error {
	gzErr := r.gz.Close()
	if err := r.f.Close(); err != nil {
		return err
	}
	return gzErr
}

func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) error {
	buf := make([]byte, 32*1024)
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("upload cancelled: %w", ctx.Err())
		default:
		}
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return fmt.Errorf("write: %w", err)
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("read: %w", readErr)
		}
	}
}
