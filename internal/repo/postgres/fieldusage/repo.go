package fieldusage

import (
	"context"
	"encoding/json"
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
		INSERT INTO field_usages (field_id, file_id, type, data, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	queryFindByID = `
		SELECT id, field_id, file_id, type, data, created_at
		FROM field_usages
		WHERE id = $1`

	queryCurrentValue = `
		SELECT id, field_id, file_id, type, data, created_at
		FROM field_usages
		WHERE field_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	// ListByDocumentJoinedUser joins through fields to pick up the signer's
	// username for the audit surface (FieldUsage events carry data.user).
	queryListByDocumentJoinedUser = `
		SELECT fu.id, fu.field_id, fu.file_id, fu.type, fu.data, fu.created_at, u.id, u.username
		FROM field_usages fu
		JOIN fields f ON f.id = fu.field_id
		LEFT JOIN users u ON u.id = f.user_id
		WHERE f.document_id = $1
		ORDER BY fu.created_at ASC`

	// FilledFieldIDs: any field on the document with at least one `filled`
	// usage row.
	queryFilledFieldIDs = `
		SELECT DISTINCT fu.field_id
		FROM field_usages fu
		JOIN fields f ON f.id = fu.field_id
		WHERE f.document_id = $1 AND fu.type = 'filled'`

	// UnfilledUserFields: Fields with user_id != null and no `filled` usage.
	queryUnfilledUserFields = `
		SELECT f.id, f.document_id, f.user_id, f.type, f.name, f.parent_id, f.created_at
		FROM fields f
		WHERE f.document_id = $1 AND f.user_id IS NOT NULL
		  AND NOT EXISTS (
		      SELECT 1 FROM field_usages fu WHERE fu.field_id = f.id AND fu.type = 'filled'
		  )`

	// AccountFields: newest usage per field across every field the user
	// owns, newest first.
	queryAccountFields = `
		SELECT field_id, type, title, created_at FROM (
			SELECT DISTINCT ON (f.id) f.id AS field_id, fu.type, d.title, fu.created_at
			FROM fields f
			JOIN field_usages fu ON fu.field_id = f.id
			JOIN documents d ON d.id = f.document_id
			WHERE f.user_id = $1
			ORDER BY f.id, fu.created_at DESC
		) newest
		ORDER BY created_at DESC`
)

func New(pool *pgxpool.Pool) port.FieldUsageRepository {
	return &Repository{pool: pool}
}

type Repository struct {
	pool *pgxpool.Pool
}

func (r *Repository) Create(ctx context.Context, u *entity.FieldUsage) error {
	data, err := json.Marshal(u.Data)
	if err != nil {
		return fmt.Errorf("fieldusage: marshaling data: %w", err)
	}
	err = r.pool.QueryRow(ctx, queryCreate, u.FieldID, u.FileID, u.Type, data, u.Timestamp).Scan(&u.ID)
	if err != nil {
		return fmt.Errorf("fieldusage: creating: %w", err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*entity.FieldUsage, error) {
	return scanOne(r.pool.QueryRow(ctx, queryFindByID, id))
}

func (r *Repository) CurrentValue(ctx context.Context, fieldID uuid.UUID) (*entity.FieldUsage, error) {
	return scanOne(r.pool.QueryRow(ctx, queryCurrentValue, fieldID))
}

func (r *Repository) ListByDocumentJoinedUser(ctx context.Context, documentID uuid.UUID) ([]*entity.FieldUsage, map[uuid.UUID]string, error) {
	rows, err := r.pool.Query(ctx, queryListByDocumentJoinedUser, documentID)
	if err != nil {
		return nil, nil, fmt.Errorf("fieldusage: listing joined: %w", err)
	}
	defer rows.Close()

	usernames := make(map[uuid.UUID]string)
	var usages []*entity.FieldUsage
	for rows.Next() {
		u := &entity.FieldUsage{}
		var data []byte
		var userID *uuid.UUID
		var username *string
		if err := rows.Scan(&u.ID, &u.FieldID, &u.FileID, &u.Type, &data, &u.Timestamp, &userID, &username); err != nil {
			return nil, nil, fmt.Errorf("fieldusage: scanning joined row: %w", err)
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &u.Data); err != nil {
				return nil, nil, fmt.Errorf("fieldusage: unmarshaling data: %w", err)
			}
		}
		if userID != nil && username != nil {
			usernames[*userID] = *username
		}
		usages = append(usages, u)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("fieldusage: iterating joined: %w", err)
	}
	return usages, usernames, nil
}

func (r *Repository) FilledFieldIDs(ctx context.Context, documentID uuid.UUID) (map[uuid.UUID]bool, error) {
	rows, err := r.pool.Query(ctx, queryFilledFieldIDs, documentID)
	if err != nil {
		return nil, fmt.Errorf("fieldusage: querying filled field ids: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]bool)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("fieldusage: scanning filled field id: %w", err)
		}
		out[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fieldusage: iterating filled field ids: %w", err)
	}
	return out, nil
}

func (r *Repository) UnfilledUserFields(ctx context.Context, documentID uuid.UUID) ([]*entity.Field, error) {
	rows, err := r.pool.Query(ctx, queryUnfilledUserFields, documentID)
	if err != nil {
		return nil, fmt.Errorf("fieldusage: querying unfilled fields: %w", err)
	}
	defer rows.Close()

	var fields []*entity.Field
	for rows.Next() {
		f := &entity.Field{}
		if err := rows.Scan(&f.ID, &f.DocumentID, &f.UserID, &f.Type, &f.Name, &f.ParentID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("fieldusage: scanning unfilled field: %w", err)
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fieldusage: iterating unfilled fields: %w", err)
	}
	return fields, nil
}

func (r *Repository) AccountFields(ctx context.Context, userID uuid.UUID) ([]*entity.AccountField, error) {
	rows, err := r.pool.Query(ctx, queryAccountFields, userID)
	if err != nil {
		return nil, fmt.Errorf("fieldusage: querying account fields: %w", err)
	}
	defer rows.Close()

	var out []*entity.AccountField
	for rows.Next() {
		af := &entity.AccountField{}
		if err := rows.Scan(&af.FieldID, &af.Status, &af.Title, &af.Timestamp); err != nil {
			return nil, fmt.Errorf("fieldusage: scanning account field: %w", err)
		}
		out = append(out, af)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fieldusage: iterating account fields: %w", err)
	}
	return out, nil
}

func scanOne(row pgx.Row) (*entity.FieldUsage, error) {
	u := &entity.FieldUsage{}
	var data []byte
	err := row.Scan(&u.ID, &u.FieldID, &u.FileID, &u.Type, &data, &u.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, fmt.Errorf("fieldusage: scanning: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &u.Data); err != nil {
			return nil, fmt.Errorf("fieldusage: unmarshaling data: %w", err)
		}
	}
	return u, nil
}
