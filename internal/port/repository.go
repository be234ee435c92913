package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rendis/esigncore/internal/entity"
)

// BusinessRepository persists Business aggregates.
type BusinessRepository interface {
	Create(ctx context.Context, b *entity.Business) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Business, error)
}

// BusinessConfigRepository persists keyed per-business configuration blobs.
type BusinessConfigRepository interface {
	Create(ctx context.Context, c *entity.BusinessConfig) error
	FindByBusinessAndKey(ctx context.Context, businessID uuid.UUID, key entity.BusinessConfigKey) ([]*entity.BusinessConfig, error)
}

// UserRepository persists User aggregates.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	Update(ctx context.Context, u *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByUsername(ctx context.Context, businessID uuid.UUID, username string) (*entity.User, error)
	FindByUsernameAnyBusiness(ctx context.Context, username string) (*entity.User, error)
}

// DocumentRepository persists Document aggregates.
type DocumentRepository interface {
	Create(ctx context.Context, d *entity.Document) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	ListByOwner(ctx context.Context, ownerUserID uuid.UUID) ([]*entity.DocumentListItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// FieldRepository persists Field aggregates.
type FieldRepository interface {
	Create(ctx context.Context, f *entity.Field) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Field, error)
	FindByDocumentAndName(ctx context.Context, documentID uuid.UUID, name string) (*entity.Field, error)
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*entity.Field, error)
	ListByParent(ctx context.Context, parentID uuid.UUID) ([]*entity.Field, error)
	ListByDocumentAndUser(ctx context.Context, documentID, userID uuid.UUID) ([]*entity.Field, error)
}

// FileRepository persists File handles.
type FileRepository interface {
	Create(ctx context.Context, f *entity.File) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.File, error)
}

// FileUsageRepository persists document-level audit events.
type FileUsageRepository interface {
	Create(ctx context.Context, u *entity.FileUsage) error
	FindByID(ctx context.Context, id int64) (*entity.FileUsage, error)
	ListByDocument(ctx context.Context, documentID uuid.UUID, excludeTypes ...entity.FileUsageType) ([]*entity.FileUsage, error)
	// LatestByTypes returns the newest FileUsage with a non-nil FileID whose
	// Type is one of types, or entity.ErrNotFound.
	LatestByTypes(ctx context.Context, documentID uuid.UUID, types ...entity.FileUsageType) (*entity.FileUsage, error)
	// LatestOfType returns the newest FileUsage row of type t, used to decide
	// whether describe-fields has been produced yet.
	LatestOfType(ctx context.Context, documentID uuid.UUID, t entity.FileUsageType) (*entity.FileUsage, error)
}

// FieldUsageRepository persists field-level audit events.
type FieldUsageRepository interface {
	Create(ctx context.Context, u *entity.FieldUsage) error
	FindByID(ctx context.Context, id int64) (*entity.FieldUsage, error)
	// CurrentValue returns the newest FieldUsage row for a field.
	CurrentValue(ctx context.Context, fieldID uuid.UUID) (*entity.FieldUsage, error)
	ListByDocumentJoinedUser(ctx context.Context, documentID uuid.UUID) ([]*entity.FieldUsage, map[uuid.UUID]string, error)
	// FilledFieldIDs returns the set of field ids on documentID with at least
	// one `filled` FieldUsage.
	FilledFieldIDs(ctx context.Context, documentID uuid.UUID) (map[uuid.UUID]bool, error)
	// UnfilledUserFields returns Fields with UserID != nil lacking any filled
	// FieldUsage.
	UnfilledUserFields(ctx context.Context, documentID uuid.UUID) ([]*entity.Field, error)
	// AccountFields returns the newest usage per field across every field
	// owned (Field.UserID) by userID, newest first.
	AccountFields(ctx context.Context, userID uuid.UUID) ([]*entity.AccountField, error)
}

// AccessURIRepository persists AccessURI grants.
type AccessURIRepository interface {
	Create(ctx context.Context, a *entity.AccessURI) error
	FindByURI(ctx context.Context, uri string) (*entity.AccessURI, error)
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
}

// RenderedPageRepository persists per-page PNG cache rows.
type RenderedPageRepository interface {
	Create(ctx context.Context, p *entity.RenderedPage) error
	Latest(ctx context.Context, documentID uuid.UUID, page int) (*entity.RenderedPage, error)
}

// BlobNameCollector gathers every storage key ever referenced by a document,
// across FileUsage.File and RenderedPage.File, for the delete_blobs task.
type BlobNameCollector interface {
	CollectBlobNames(ctx context.Context, documentID uuid.UUID) ([]string, error)
}

// Clock is injected wherever "now" must be mockable in tests (dependent-date
// cascade, timestamps); production wiring uses time.Now directly.
type Clock interface {
	Now() time.Time
}
