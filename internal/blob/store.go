// Package blob — хранилище содержимого загруженных файлов (документы, фото).
// Метаданные живут в Postgres, содержимое — здесь: S3/MinIO в проде,
// локальный каталог в -dev.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("blob: not found")

// Object — открытое содержимое. Body обязан закрыть вызывающий.
type Object struct {
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

// Store — тонкая обёртка put/open/delete над хранилищем объектов.
type Store interface {
	// Put сохраняет содержимое под ключом и возвращает публичный URL
	// ("" — у хранилища нет прямого URL, файл отдаёт API).
	Put(ctx context.Context, key, contentType string, r io.Reader) (url string, err error)
	Open(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// RandomKey генерирует ключ вида users/2026/9/1/{uuid}{ext} — раскладка по дате,
// чтобы листинг бакета оставался обозримым.
func RandomKey(ext string) string {
	d := time.Now()
	return fmt.Sprintf("users/%d/%d/%d/%v%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}
