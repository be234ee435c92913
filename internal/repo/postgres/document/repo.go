package document

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
		INSERT INTO documents (id, title, owner_user_id, created_at)
		VALUES ($1, $2, $3, $4)`

	queryFindByID = `
		SELECT id, title, owner_user_id, created_at
		FROM documents
		WHERE id = $1`

	queryListByOwner = `
		SELECT id, title
		FROM documents
		WHERE owner_user_id = $1
		ORDER BY created_at DESC`

	queryDelete = `DELETE FROM documents WHERE id = $1`

	queryCollectFileIDs = `
		SELECT DISTINCT file_id FROM file_usages WHERE document_id = $1 AND file_id IS NOT NULL
		UNION
		SELECT DISTINCT file_id FROM rendered_pages WHERE document_id = $1`

	queryDeleteFileUsages  = `DELETE FROM file_usages WHERE document_id = $1`
	queryDeleteRendered    = `DELETE FROM rendered_pages WHERE document_id = $1`
	queryDeleteFieldUsages = `DELETE FROM field_usages WHERE field_id IN (SELECT id FROM fields WHERE document_id = $1)`
	queryDeleteFields      = `DELETE FROM fields WHERE document_id = $1`
	queryDeleteAccessURIs  = `DELETE FROM access_uris WHERE document_id = $1`
	queryDeleteFilesByIDs  = `DELETE FROM files WHERE id = ANY($1)`
)

// Repository implements both port.DocumentRepository and
// port.BlobNameCollector; New returns the concrete type so callers can bind
// it to either port.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Repository struct {
	pool *pgxpool.Pool
}

var (
	_ port.DocumentRepository = (*Repository)(nil)
	_ port.BlobNameCollector  = (*Repository)(nil)
)

func (r *Repository) Create(ctx context.Context, d *entity.Document) error {
	_, err := r.pool.Exec(ctx, queryCreate, d.ID, d.Title, d.OwnerUserID, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("document: creating: %w", err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	d := &entity.Document{}
	err := r.pool.QueryRow(ctx, queryFindByID, id).Scan(&d.ID, &d.Title, &d.OwnerUserID, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("document: finding %s: %w", id, err)
	}
	return d, nil
}

func (r *Repository) ListByOwner(ctx context.Context, ownerUserID uuid.UUID) ([]*entity.DocumentListItem, error) {
	rows, err := r.pool.Query(ctx, queryListByOwner, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("document: listing by owner %s: %w", ownerUserID, err)
	}
	defer rows.Close()

	var items []*entity.DocumentListItem
	for rows.Next() {
		item := &entity.DocumentListItem{}
		if err := rows.Scan(&item.ID, &item.Title); err != nil {
			return nil, fmt.Errorf("document: scanning list item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("document: iterating list: %w", err)
	}
	return items, nil
}

// Delete cascades FileUsage, RenderedPage, FieldUsage, Field, File and
// AccessURI rows for the document, then the Document row itself, in the
// prescribed order, inside one transaction. Referenced blob names should be
// collected (CollectBlobNames) before calling Delete.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("document: beginning delete transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, queryCollectFileIDs, id)
	if err != nil {
		return fmt.Errorf("document: collecting file ids: %w", err)
	}
	var fileIDs []uuid.UUID
	for rows.Next() {
		var fid uuid.UUID
		if err := rows.Scan(&fid); err != nil {
			rows.Close()
			return fmt.Errorf("document: scanning file id: %w", err)
		}
		fileIDs = append(fileIDs, fid)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("document: iterating file ids: %w", err)
	}

	steps := []struct {
		query string
		args  []any
	}{
		{queryDeleteFileUsages, []any{id}},
		{queryDeleteRendered, []any{id}},
		{queryDeleteFieldUsages, []any{id}},
		{queryDeleteFields, []any{id}},
		{queryDeleteAccessURIs, []any{id}},
	}
	if len(fileIDs) > 0 {
		steps = append(steps, struct {
			query string
			args  []any
		}{queryDeleteFilesByIDs, []any{fileIDs}})
	}
	steps = append(steps, struct {
		query string
		args  []any
	}{queryDelete, []any{id}})

	for _, s := range steps {
		if _, err := tx.Exec(ctx, s.query, s.args...); err != nil {
			return fmt.Errorf("document: deleting %s: %w", id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("document: committing delete of %s: %w", id, err)
	}
	return nil
}

// CollectBlobNames implements port.BlobNameCollector for the delete_blobs
// task: it must be called before Delete removes the referencing rows.
func (r *Repository) CollectBlobNames(ctx context.Context, documentID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT f.filename
		FROM files f
		WHERE f.id IN (SELECT file_id FROM file_usages WHERE document_id = $1 AND file_id IS NOT NULL)
		   OR f.id IN (SELECT file_id FROM rendered_pages WHERE document_id = $1)`, documentID)
	if err != nil {
		return nil, fmt.Errorf("document: collecting blob names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("document: scanning blob name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("document: iterating blob names: %w", err)
	}
	return names, nil
}
