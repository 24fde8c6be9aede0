package model

import "time"

// Document — метаданные загруженного документа; содержимое лежит в blob-хранилище
// по ключу StorageKey.
type Document struct {
	ID         string    `json:"id"`
	UserID     string    `json:"-"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	StorageKey string    `json:"-"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mime_type"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
