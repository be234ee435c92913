package fileusage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rendis/esigncore/internal/entity"
	"github.com/rendis/esigncore/internal/port"
)

const (
	queryCreate = `
		INSERT INTO file_usages (document_id, file_id, type, data, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	queryFindByID = `
		SELECT id, document_id, file_id, type, data, created_at
		FROM file_usages
		WHERE id = $1`

	queryListByDocument = `
		SELECT id, document_id, file_id, type, data, created_at
		FROM file_usages
		WHERE document_id = $1
		ORDER BY created_at ASC`

	queryLatestByTypes = `
		SELECT id, document_id, file_id, type, data, created_at
		FROM file_usages
		WHERE document_id = $1 AND file_id IS NOT NULL AND type = ANY($2)
		ORDER BY created_at DESC
		LIMIT 1`

	queryLatestOfType = `
		SELECT id, document_id, file_id, type, data, created_at
		FROM file_usages
		WHERE document_id = $1 AND type = $2
		ORDER BY created_at DESC
		LIMIT 1`
)

func New(pool *pgxpool.Pool) port.FileUsageRepository {
	return &Repository{pool: pool}
}

type Repository struct {
	pool *pgxpool.Pool
}

func (r *Repository) Create(ctx context.Context, u *entity.FileUsage) error {
	data, err := json.Marshal(u.Data)
	if err != nil {
		return fmt.Errorf("fileusage: marshaling data: %w", err)
	}
	err = r.pool.QueryRow(ctx, queryCreate, u.DocumentID, u.FileID, u.Type, data, u.Timestamp).Scan(&u.ID)
	if err != nil {
		return fmt.Errorf("fileusage: creating: %w", err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*entity.FileUsage, error) {
	return scanOne(r.pool.QueryRow(ctx, queryFindByID, id))
}

func (r *Repository) ListByDocument(ctx context.Context, documentID uuid.UUID, excludeTypes ...entity.FileUsageType) ([]*entity.FileUsage, error) {
	rows, err := r.pool.Query(ctx, queryListByDocument, documentID)
	if err != nil {
		return nil, fmt.Errorf("fileusage: listing: %w", err)
	}
	defer rows.Close()

	excluded := make(map[entity.FileUsageType]bool, len(excludeTypes))
	for _, t := range excludeTypes {
		excluded[t] = true
	}

	var usages []*entity.FileUsage
	for rows.Next() {
		u, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		if excluded[u.Type] {
			continue
		}
		usages = append(usages, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fileusage: iterating: %w", err)
	}
	return usages, nil
}

func (r *Repository) LatestByTypes(ctx context.Context, documentID uuid.UUID, types ...entity.FileUsageType) (*entity.FileUsage, error) {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	u, err := scanOne(r.pool.QueryRow(ctx, queryLatestByTypes, documentID, names))
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, fmt.Errorf("fileusage: no usage of types [%s] for document %s: %w", strings.Join(names, ","), documentID, entity.ErrNotFound)
		}
		return nil, err
	}
	return u, nil
}

func (r *Repository) LatestOfType(ctx context.Context, documentID uuid.UUID, t entity.FileUsageType) (*entity.FileUsage, error) {
	return scanOne(r.pool.QueryRow(ctx, queryLatestOfType, documentID, t))
}

func scanOne(row pgx.Row) (*entity.FileUsage, error) {
	u := &entity.FileUsage{}
	var data []byte
	err := row.Scan(&u.ID, &u.DocumentID, &u.FileID, &u.Type, &data, &u.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, fmt.Errorf("fileusage: scanning: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &u.Data); err != nil {
			return nil, fmt.Errorf("fileusage: unmarshaling data: %w", err)
		}
	}
	return u, nil
}

func scanRow(rows pgx.Rows) (*entity.FileUsage, error) {
	u := &entity.FileUsage{}
	var data []byte
	if err := rows.Scan(&u.ID, &u.DocumentID, &u.FileID, &u.Type, &data, &u.Timestamp); err != nil {
		return nil, fmt.Errorf("fileusage: scanning row: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &u.Data); err != nil {
			return nil, fmt.Errorf("fileusage: unmarshaling data: %w", err)
		}
	}
	return u, nil
}
