package file

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
		INSERT INTO files (id, filename, request_uri, created_at)
		VALUES ($1, $2, $3, $4)`

	queryFindByID = `
		SELECT id, filename, request_uri, created_at
		FROM files
		WHERE id = $1`
)

func New(pool *pgxpool.Pool) port.FileRepository {
	return &Repository{pool: pool}
}

type Repository struct {
	pool *pgxpool.Pool
}

func (r *Repository) Create(ctx context.Context, f *entity.File) error {
	_, err := r.pool.Exec(ctx, queryCreate, f.ID, f.Filename, f.RequestURI, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("file: creating: %w", err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*entity.File, error) {
	f := &entity.File{}
	err := r.pool.QueryRow(ctx, queryFindByID, id).Scan(&f.ID, &f.Filename, &f.RequestURI, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, fmt.Errorf("file: finding %s: %w", id, err)
	}
	return f, nil
}
