package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/legacyvault/internal/logger"
	"github.com/legacyvault/internal/model"
)

// tags хранятся как jsonb; pgx маппит []string <-> jsonb без промежуточного маршалинга.
const documentCols = `id, user_id, name, type, storage_key, url, size, mime_type, tags, created_at, updated_at`

type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

func scanDocument(s interface{ Scan(dest ...any) error }, d *model.Document) error {
	return s.Scan(&d.ID, &d.UserID, &d.Name, &d.Type, &d.StorageKey, &d.URL, &d.Size, &d.MimeType, &d.Tags, &d.CreatedAt, &d.UpdatedAt)
}

func (r *DocumentRepository) Create(ctx context.Context, d *model.Document) error {
	defer logger.DeferLogDuration("document.Create", time.Now())()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO documents (id, user_id, name, type, storage_key, url, size, mime_type, tags, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		d.ID, d.UserID, d.Name, d.Type, d.StorageKey, d.URL, d.Size, d.MimeType, d.Tags, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("documentRepo.Create: %w", err)
	}
	return nil
}

// GetByID возвращает документ владельца userID (чужие документы — ErrNotFound).
func (r *DocumentRepository) GetByID(ctx context.Context, userID, id string) (*model.Document, error) {
	defer logger.DeferLogDuration("document.GetByID", time.Now())()
	d := &model.Document{}
	row := r.pool.QueryRow(ctx, `SELECT `+documentCols+` FROM documents WHERE id = $1 AND user_id = $2`, id, userID)
	if err := scanDocument(row, d); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return d, nil
}

func (r *DocumentRepository) ListByUser(ctx context.Context, userID string) ([]model.Document, error) {
	defer logger.DeferLogDuration("document.ListByUser", time.Now())()
	rows, err := r.pool.Query(ctx,
		`SELECT `+documentCols+` FROM documents WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.ListByUser: %w", err)
	}
	defer rows.Close()
	docs := make([]model.Document, 0)
	for rows.Next() {
		var d model.Document
		if err := scanDocument(rows, &d); err != nil {
			return nil, fmt.Errorf("documentRepo.ListByUser scan: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("documentRepo.ListByUser rows: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	defer logger.DeferLogDuration("document.CountByUser", time.Now())()
	var count int
	row := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents WHERE user_id = $1`, userID)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("documentRepo.CountByUser: %w", err)
	}
	return count, nil
}

// Delete удаляет документ владельца userID; ErrNotFound, если строки не было.
func (r *DocumentRepository) Delete(ctx context.Context, userID, id string) error {
	defer logger.DeferLogDuration("document.Delete", time.Now())()
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("documentRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
