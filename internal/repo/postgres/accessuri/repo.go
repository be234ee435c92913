package accessuri

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
		INSERT INTO access_uris (uri, user_id, document_id, revoked, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	queryFindByURI = `
		SELECT id, uri, user_id, document_id, revoked, created_at
		FROM access_uris
		WHERE uri = $1`

	queryRevokeAllForUser = `
		UPDATE access_uris SET revoked = true WHERE user_id = $1`
)

func New(pool *pgxpool.Pool) port.AccessURIRepository {
	return &Repository{pool: pool}
}

type Repository struct {
	pool *pgxpool.Pool
}

func (r *Repository) Create(ctx context.Context, a *entity.AccessURI) error {
	err := r.pool.QueryRow(ctx, queryCreate, a.URI, a.UserID, a.DocumentID, a.Revoked, a.CreatedAt).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("accessuri: creating: %w", err)
	}
	return nil
}

func (r *Repository) FindByURI(ctx context.Context, uri string) (*entity.AccessURI, error) {
	a := &entity.AccessURI{}
	err := r.pool.QueryRow(ctx, queryFindByURI, uri).Scan(&a.ID, &a.URI, &a.UserID, &a.DocumentID, &a.Revoked, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrAccessURINotFound
		}
		return nil, fmt.Errorf("accessuri: finding: %w", err)
	}
	return a, nil
}

func (r *Repository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, queryRevokeAllForUser, userID)
	if err != nil {
		return fmt.Errorf("accessuri: revoking for user %s: %w", userID, err)
	}
	return nil
}
