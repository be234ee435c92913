package entity

import (
	"time"

	"github.com/google/uuid"
)

// AccessURI grants bounded-scope, revocable access to exactly one
// (UserID, DocumentID) pair via an opaque bearer token string (URI), minted
// with at least 66 random bytes, base64-encoded.
type AccessURI struct {
	ID         int64
	URI        string
	UserID     uuid.UUID
	DocumentID uuid.UUID
	Revoked    bool
	CreatedAt  time.Time
}

func NewAccessURI(uri string, userID, documentID uuid.UUID) *AccessURI {
	return &AccessURI{
		URI:        uri,
		UserID:     userID,
		DocumentID: documentID,
		Revoked:    false,
		CreatedAt:  time.Now().UTC(),
	}
}
