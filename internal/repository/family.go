package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/legacyvault/internal/logger"
	"github.com/legacyvault/internal/model"
)

// permissions хранятся как jsonb (см. model.FamilyPermissions).
const familyCols = `id, user_id, name, relationship, email, phone, address,
	COALESCE(additional_info,''), COALESCE(profile_picture,''), permissions, created_at`

type FamilyRepository struct {
	pool *pgxpool.Pool
}

func NewFamilyRepository(pool *pgxpool.Pool) *FamilyRepository {
	return &FamilyRepository{pool: pool}
}

func scanFamilyMember(s interface{ Scan(dest ...any) error }, m *model.FamilyMember) error {
	return s.Scan(&m.ID, &m.UserID, &m.Name, &m.Relationship, &m.Email, &m.Phone,
		&m.Address, &m.AdditionalInfo, &m.ProfilePicture, &m.Permissions, &m.CreatedAt)
}

func (r *FamilyRepository) Create(ctx context.Context, m *model.FamilyMember) error {
	defer logger.DeferLogDuration("family.Create", time.Now())()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO family_members (id, user_id, name, relationship, email, phone, address, additional_info, profile_picture, permissions, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		m.ID, m.UserID, m.Name, m.Relationship, m.Email, m.Phone, m.Address,
		m.AdditionalInfo, m.ProfilePicture, m.Permissions, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("familyRepo.Create: %w", err)
	}
	return nil
}

func (r *FamilyRepository) ListByUser(ctx context.Context, userID string) ([]model.FamilyMember, error) {
	defer logger.DeferLogDuration("family.ListByUser", time.Now())()
	rows, err := r.pool.Query(ctx,
		`SELECT `+familyCols+` FROM family_members WHERE user_id = $1 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("familyRepo.ListByUser: %w", err)
	}
	defer rows.Close()
	members := make([]model.FamilyMember, 0)
	for rows.Next() {
		var m model.FamilyMember
		if err := scanFamilyMember(rows, &m); err != nil {
			return nil, fmt.Errorf("familyRepo.ListByUser scan: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("familyRepo.ListByUser rows: %w", err)
	}
	return members, nil
}

func (r *FamilyRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	defer logger.DeferLogDuration("family.CountByUser", time.Now())()
	var count int
	row := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM family_members WHERE user_id = $1`, userID)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("familyRepo.CountByUser: %w", err)
	}
	return count, nil
}

func (r *FamilyRepository) Delete(ctx context.Context, userID, id string) error {
	defer logger.DeferLogDuration("family.Delete", time.Now())()
	tag, err := r.pool.Exec(ctx, `DELETE FROM family_members WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("familyRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
