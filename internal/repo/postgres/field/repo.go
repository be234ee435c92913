package field

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
		INSERT INTO fields (id, document_id, user_id, type, name, parent_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	querySelect = `
		SELECT id, document_id, user_id, type, name, parent_id, created_at
		FROM fields
		WHERE id = $1`

	queryFindByDocumentAndName = `
		SELECT id, document_id, user_id, type, name, parent_id, created_at
		FROM fields
		WHERE document_id = $1 AND name = $2`

	queryListByDocument = `
		SELECT id, document_id, user_id, type, name, parent_id, created_at
		FROM fields
		WHERE document_id = $1`

	queryListByParent = `
		SELECT id, document_id, user_id, type, name, parent_id, created_at
		FROM fields
		WHERE parent_id = $1`

	queryListByDocumentAndUser = `
		SELECT id, document_id, user_id, type, name, parent_id, created_at
		FROM fields
		WHERE document_id = $1 AND user_id = $2`
)

func New(pool *pgxpool.Pool) port.FieldRepository {
	return &Repository{pool: pool}
}

type Repository struct {
	pool *pgxpool.Pool
}

func (r *Repository) Create(ctx context.Context, f *entity.Field) error {
	_, err := r.pool.Exec(ctx, queryCreate, f.ID, f.DocumentID, f.UserID, f.Type, f.Name, f.ParentID, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("field: creating: %w", err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Field, error) {
	return scanOne(r.pool.QueryRow(ctx, querySelect, id))
}

func (r *Repository) FindByDocumentAndName(ctx context.Context, documentID uuid.UUID, name string) (*entity.Field, error) {
	return scanOne(r.pool.QueryRow(ctx, queryFindByDocumentAndName, documentID, name))
}

func (r *Repository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*entity.Field, error) {
	return scanMany(ctx, r.pool, queryListByDocument, documentID)
}

func (r *Repository) ListByParent(ctx context.Context, parentID uuid.UUID) ([]*entity.Field, error) {
	return scanMany(ctx, r.pool, queryListByParent, parentID)
}

func (r *Repository) ListByDocumentAndUser(ctx context.Context, documentID, userID uuid.UUID) ([]*entity.Field, error) {
	return scanMany(ctx, r.pool, queryListByDocumentAndUser, documentID, userID)
}

func scanOne(row pgx.Row) (*entity.Field, error) {
	f := &entity.Field{}
	err := row.Scan(&f.ID, &f.DocumentID, &f.UserID, &f.Type, &f.Name, &f.ParentID, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrFieldNotFound
		}
		return nil, fmt.Errorf("field: scanning: %w", err)
	}
	return f, nil
}

func scanMany(ctx context.Context, pool *pgxpool.Pool, query string, args ...any) ([]*entity.Field, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("field: querying: %w", err)
	}
	defer rows.Close()

	var fields []*entity.Field
	for rows.Next() {
		f := &entity.Field{}
		if err := rows.Scan(&f.ID, &f.DocumentID, &f.UserID, &f.Type, &f.Name, &f.ParentID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("field: scanning row: %w", err)
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("field: iterating: %w", err)
	}
	return fields, nil
}
