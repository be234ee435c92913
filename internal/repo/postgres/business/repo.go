package business

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rendis/esigncore/internal/entity"
	"github.com/rendis/esigncore/internal/port"
)

const (
	queryCreate = `
		INSERT INTO businesses (id, name, created_at)
		VALUES ($1, $2, $3)`

	queryFindByID = `
		SELECT id, name, created_at
		FROM businesses
		WHERE id = $1`
)

// New creates a new business repository.
func New(pool *pgxpool.Pool) port.BusinessRepository {
	return &Repository{pool: pool}
}

// Repository implements port.BusinessRepository using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func (r *Repository) Create(ctx context.Context, b *entity.Business) error {
	_, err := r.pool.Exec(ctx, queryCreate, b.ID, b.Name, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("business: creating: %w", err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Business, error) {
	b := &entity.Business{}
	err := r.pool.QueryRow(ctx, queryFindByID, id).Scan(&b.ID, &b.Name, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrBusinessNotFound
		}
		return nil, fmt.Errorf("business: finding %s: %w", id, err)
	}
	return b, nil
}
