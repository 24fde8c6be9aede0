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

const realEstateCols = `id, user_id, address, price, bedrooms, bathrooms, square_footage, year_built, created_at`

type RealEstateRepository struct {
	pool *pgxpool.Pool
}

func NewRealEstateRepository(pool *pgxpool.Pool) *RealEstateRepository {
	return &RealEstateRepository{pool: pool}
}

func scanRealEstate(s interface{ Scan(dest ...any) error }, p *model.RealEstate) error {
	return s.Scan(&p.ID, &p.UserID, &p.Address, &p.Price, &p.Bedrooms, &p.Bathrooms,
		&p.SquareFootage, &p.YearBuilt, &p.CreatedAt)
}

// Create вставляет объект и заполняет p.ID (serial).
func (r *RealEstateRepository) Create(ctx context.Context, p *model.RealEstate) error {
	defer logger.DeferLogDuration("realestate.Create", time.Now())()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO real_estate (user_id, address, price, bedrooms, bathrooms, square_footage, year_built, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		p.UserID, p.Address, p.Price, p.Bedrooms, p.Bathrooms, p.SquareFootage, p.YearBuilt, p.CreatedAt,
	)
	if err := row.Scan(&p.ID); err != nil {
		return fmt.Errorf("realEstateRepo.Create: %w", err)
	}
	return nil
}

func (r *RealEstateRepository) GetByID(ctx context.Context, userID string, id int64) (*model.RealEstate, error) {
	defer logger.DeferLogDuration("realestate.GetByID", time.Now())()
	p := &model.RealEstate{}
	row := r.pool.QueryRow(ctx, `SELECT `+realEstateCols+` FROM real_estate WHERE id = $1 AND user_id = $2`, id, userID)
	if err := scanRealEstate(row, p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("realEstateRepo.GetByID: %w", err)
	}
	return p, nil
}

func (r *RealEstateRepository) ListByUser(ctx context.Context, userID string) ([]model.RealEstate, error) {
	defer logger.DeferLogDuration("realestate.ListByUser", time.Now())()
	rows, err := r.pool.Query(ctx,
		`SELECT `+realEstateCols+` FROM real_estate WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("realEstateRepo.ListByUser: %w", err)
	}
	defer rows.Close()
	props := make([]model.RealEstate, 0)
	for rows.Next() {
		var p model.RealEstate
		if err := scanRealEstate(rows, &p); err != nil {
			return nil, fmt.Errorf("realEstateRepo.ListByUser scan: %w", err)
		}
		props = append(props, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("realEstateRepo.ListByUser rows: %w", err)
	}
	return props, nil
}

func (r *RealEstateRepository) Update(ctx context.Context, p *model.RealEstate) error {
	defer logger.DeferLogDuration("realestate.Update", time.Now())()
	tag, err := r.pool.Exec(ctx,
		`UPDATE real_estate SET address = $1, price = $2, bedrooms = $3, bathrooms = $4,
		 square_footage = $5, year_built = $6 WHERE id = $7 AND user_id = $8`,
		p.Address, p.Price, p.Bedrooms, p.Bathrooms, p.SquareFootage, p.YearBuilt, p.ID, p.UserID,
	)
	if err != nil {
		return fmt.Errorf("realEstateRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RealEstateRepository) Delete(ctx context.Context, userID string, id int64) error {
	defer logger.DeferLogDuration("realestate.Delete", time.Now())()
	tag, err := r.pool.Exec(ctx, `DELETE FROM real_estate WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("realEstateRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
