package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is the aggregate root for a single e-signing flow. Title and
// OwnerUserID never change after creation; all other state is reconstructed
// from FileUsage/FieldUsage rows.
type Document struct {
	ID          uuid.UUID
	Title       string
	OwnerUserID uuid.UUID
	CreatedAt   time.Time
}

func NewDocument(title string, ownerUserID uuid.UUID) *Document {
	return &Document{
		ID:          uuid.New(),
		Title:       title,
		OwnerUserID: ownerUserID,
		CreatedAt:   time.Now().UTC(),
	}
}

// DocumentListItem is the shape returned by GET /account/documents.
type DocumentListItem struct {
	ID    uuid.UUID
	Title string
}

// File represents one blob handle in object storage. Filename is the opaque
// storage key; File rows are never mutated.
type File struct {
	ID         uuid.UUID
	Filename   string
	RequestURI *string
	CreatedAt  time.Time
}

func NewFile(filename string) *File {
	return &File{
		ID:        uuid.New(),
		Filename:  filename,
		CreatedAt: time.Now().UTC(),
	}
}

// RenderedPage caches one page-PNG for a document. The newest row per
// (DocumentID, Page) wins; readers never delete stale rows inline.
type RenderedPage struct {
	ID         int64
	FileID     uuid.UUID
	DocumentID uuid.UUID
	Page       int
	CreatedAt  time.Time
}

func NewRenderedPage(fileID, documentID uuid.UUID, page int) *RenderedPage {
	return &RenderedPage{
		FileID:     fileID,
		DocumentID: documentID,
		Page:       page,
		CreatedAt:  time.Now().UTC(),
	}
}
