package entity

import (
	"time"

	"github.com/google/uuid"
)

// User belongs to a Business. A nil PasswordHash marks a password-less,
// invited user who can only be reached through an AccessURI. Deletion is
// soft: Deleted=true retains every FieldUsage the user produced, but all of
// the user's AccessURI rows must be revoked alongside the soft delete.
type User struct {
	ID           uuid.UUID
	BusinessID   uuid.UUID
	Username     string // email, unique within the business
	PasswordHash []byte // nil => password-less account
	Deleted      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewUser(businessID uuid.UUID, username string, passwordHash []byte) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		BusinessID:   businessID,
		Username:     username,
		PasswordHash: passwordHash,
		Deleted:      false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (u *User) HasPassword() bool {
	return len(u.PasswordHash) > 0
}

func (u *User) touch() {
	u.UpdatedAt = time.Now().UTC()
}

func (u *User) SoftDelete() {
	u.Deleted = true
	u.touch()
}

// Resurrect reverses SoftDelete. Callers must have already verified the
// supplied password matches PasswordHash and that PasswordHash is non-nil;
// resurrection of a password-less account is not permitted by the caller
// (entity.ErrUserHasNoPassword).
func (u *User) Resurrect() {
	u.Deleted = false
	u.touch()
}

func (u *User) SetPassword(hash []byte) {
	u.PasswordHash = hash
	u.touch()
}
