package entity

import (
	"time"

	"github.com/google/uuid"
)

// Field is one fillable slot on a Document. A nil UserID marks a dependent
// field (its value is derived, never filled directly by a caller); a non-nil
// ParentID marks it as dependent on another field within the same document.
// Global invariant: ParentID != nil => Type == FieldTypeDate, and the parent
// field's Type must be signature or text.
type Field struct {
	ID         uuid.UUID
	DocumentID uuid.UUID
	UserID     *uuid.UUID
	Type       FieldType
	Name       string
	ParentID   *uuid.UUID
	CreatedAt  time.Time
}

func NewField(documentID uuid.UUID, userID *uuid.UUID, name string, typ FieldType, parentID *uuid.UUID) *Field {
	return &Field{
		ID:         uuid.New(),
		DocumentID: documentID,
		UserID:     userID,
		Type:       typ,
		Name:       name,
		ParentID:   parentID,
		CreatedAt:  time.Now().UTC(),
	}
}

func (f *Field) IsDependent() bool {
	return f.ParentID != nil
}

// FileUsage is an append-only audit event about a Document. A nil FileID on
// an endstamp row means stamping failed for that attempt.
type FileUsage struct {
	ID         int64
	DocumentID uuid.UUID
	FileID     *uuid.UUID
	Type       FileUsageType
	Data       map[string]any
	Timestamp  time.Time
}

func NewFileUsage(documentID uuid.UUID, fileID *uuid.UUID, typ FileUsageType, data map[string]any) *FileUsage {
	return &FileUsage{
		DocumentID: documentID,
		FileID:     fileID,
		Type:       typ,
		Data:       data,
		Timestamp:  time.Now().UTC(),
	}
}

// FieldUsage is an append-only audit event about a Field. The current value
// of a field is always the newest FieldUsage row by Timestamp.
type FieldUsage struct {
	ID        int64
	FieldID   uuid.UUID
	FileID    *uuid.UUID
	Type      FieldUsageType
	Data      map[string]any
	Timestamp time.Time
}

func NewFieldUsage(fieldID uuid.UUID, fileID *uuid.UUID, typ FieldUsageType, data map[string]any) *FieldUsage {
	return &FieldUsage{
		FieldID:   fieldID,
		FileID:    fileID,
		Type:      typ,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// AccountField is the deduped, newest-usage-per-field projection served by
// GET /account/fields.
type AccountField struct {
	FieldID   uuid.UUID
	Status    FieldUsageType
	Title     string // owning document's title
	Timestamp time.Time
}
