package renderedpage

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
		INSERT INTO rendered_pages (file_id, document_id, page, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	// Latest: newest row per (document, page) wins.
	queryLatest = `
		SELECT id, file_id, document_id, page, created_at
		FROM rendered_pages
		WHERE document_id = $1 AND page = $2
		ORDER BY id DESC
		LIMIT 1`
)

func New(pool *pgxpool.Pool) port.RenderedPageRepository {
	return &Repository{pool: pool}
}

type Repository struct {
	pool *pgxpool.Pool
}

func (r *Repository) Create(ctx context.Context, p *entity.RenderedPage) error {
	err := r.pool.QueryRow(ctx, queryCreate, p.FileID, p.DocumentID, p.Page, p.CreatedAt).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("renderedpage: creating: %w", err)
	}
	return nil
}

func (r *Repository) Latest(ctx context.Context, documentID uuid.UUID, page int) (*entity.RenderedPage, error) {
	p := &entity.RenderedPage{}
	err := r.pool.QueryRow(ctx, queryLatest, documentID, page).Scan(&p.ID, &p.FileID, &p.DocumentID, &p.Page, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrRenderedPageNotFound
		}
		return nil, fmt.Errorf("renderedpage: finding latest: %w", err)
	}
	return p, nil
}
