// Package identity implements C2: passwords, JWT issuance, access-URI
// minting and revocation, and the owner-or-signer permission check used by
// every document endpoint.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rendis/esigncore/internal/entity"
	"github.com/rendis/esigncore/internal/port"
)

// accessURIBytesMin is the floor on random bytes behind a minted AccessURI.
const accessURIBytesMin = 66

var validate = validator.New()

// Claims is the JWT payload this service issues and verifies. Doc is only
// set for tokens minted by ExchangeAccessURI; Exp is omitted for
// password-account tokens (see Login).
type Claims struct {
	jwt.RegisteredClaims
	Doc *uuid.UUID `json:"doc,omitempty"`
}

// Config carries the tunables the service needs beyond its repository
// dependencies.
type Config struct {
	JWTSecret       []byte
	DefaultTokenTTL time.Duration
	BcryptCost      int
	AccessURIBytes  int
}

func New(
	users port.UserRepository,
	businesses port.BusinessRepository,
	accessURIs port.AccessURIRepository,
	fields port.FieldRepository,
	cfg Config,
) *Service {
	if cfg.AccessURIBytes < accessURIBytesMin {
		cfg.AccessURIBytes = accessURIBytesMin
	}
	return &Service{
		users:      users,
		businesses: businesses,
		accessURIs: accessURIs,
		fields:     fields,
		cfg:        cfg,
	}
}

// Service implements C2.
type Service struct {
	users      port.UserRepository
	businesses port.BusinessRepository
	accessURIs port.AccessURIRepository
	fields     port.FieldRepository
	cfg        Config
}

// Login verifies username/password (or the password-less bypass) and
// returns a signed JWT. A password-holding account receives a token with no
// expiry claim; a password-less account receives one with DefaultTokenTTL —
// this asymmetry is intentional: a password holder has an independent
// revocation path (changing their password) that an invitee lacks.
func (s *Service) Login(ctx context.Context, businessID uuid.UUID, username, password string) (string, error) {
	u, err := s.users.FindByUsername(ctx, businessID, username)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return "", entity.ErrInvalidCredentials
		}
		return "", err
	}
	if u.Deleted {
		return "", entity.ErrInvalidCredentials
	}

	var expiresAt *jwt.NumericDate
	if u.HasPassword() {
		if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
			return "", entity.ErrInvalidCredentials
		}
	} else if password != "" {
		return "", entity.ErrInvalidCredentials
	} else {
		expiresAt = jwt.NewNumericDate(time.Now().Add(s.cfg.DefaultTokenTTL))
	}

	return s.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ExpiresAt: expiresAt,
		},
	})
}

// ExchangeAccessURI trades a minted access-URI string for a scoped JWT
// carrying {user-id, target-document}. Revoked or unknown URIs fail closed.
func (s *Service) ExchangeAccessURI(ctx context.Context, uri string) (string, error) {
	a, err := s.accessURIs.FindByURI(ctx, uri)
	if err != nil {
		return "", err
	}
	if a.Revoked {
		return "", entity.ErrAccessURIRevoked
	}
	doc := a.DocumentID
	return s.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.cfg.DefaultTokenTTL)),
		},
		Doc: &doc,
	})
}

// Verify parses and validates a bearer token, returning its claims.
func (s *Service) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.cfg.JWTSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, entity.ErrUnauthorized
	}
	return claims, nil
}

func (s *Service) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.cfg.JWTSecret)
	if err != nil {
		return "", fmt.Errorf("identity: signing token: %w", err)
	}
	return signed, nil
}

// CreateAccount registers a new password-bearing User under businessID.
func (s *Service) CreateAccount(ctx context.Context, businessID uuid.UUID, username, password string) (*entity.User, error) {
	if !validEmail(username) {
		return nil, entity.ErrInvalidEmail
	}
	if password == "" {
		return nil, entity.ErrEmptyPassword
	}
	if _, err := s.businesses.FindByID(ctx, businessID); err != nil {
		return nil, err
	}
	if existing, err := s.users.FindByUsername(ctx, businessID, username); err == nil && existing != nil {
		return nil, entity.ErrUserAlreadyExists
	} else if err != nil && !errors.Is(err, entity.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("identity: hashing password: %w", err)
	}
	u := entity.NewUser(businessID, username, hash)
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword requires the account to be active (not soft-deleted).
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	if newPassword == "" {
		return entity.ErrEmptyPassword
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.Deleted {
		return entity.ErrUserDeleted
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("identity: hashing password: %w", err)
	}
	u.SetPassword(hash)
	return s.users.Update(ctx, u)
}

// SoftDeleteAccount marks the user deleted and revokes every AccessURI they
// hold (global invariant 6 / testable property 4).
func (s *Service) SoftDeleteAccount(ctx context.Context, userID uuid.UUID) error {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	u.SoftDelete()
	if err := s.users.Update(ctx, u); err != nil {
		return err
	}
	return s.accessURIs.RevokeAllForUser(ctx, userID)
}

// ResurrectAccount requires a password match and forbids resurrecting an
// account that never had one.
func (s *Service) ResurrectAccount(ctx context.Context, businessID uuid.UUID, username, password string) error {
	u, err := s.users.FindByUsername(ctx, businessID, username)
	if err != nil {
		return err
	}
	if !u.Deleted {
		return entity.ErrUserNotDeleted
	}
	if !u.HasPassword() {
		return entity.ErrUserHasNoPassword
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		return entity.ErrInvalidCredentials
	}
	u.Resurrect()
	return s.users.Update(ctx, u)
}

// MintAccessURI creates a new, non-revoked AccessURI scoping userID to
// documentID, with at least Config.AccessURIBytes of entropy.
func (s *Service) MintAccessURI(ctx context.Context, userID, documentID uuid.UUID) (*entity.AccessURI, error) {
	buf := make([]byte, s.cfg.AccessURIBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("identity: generating access uri entropy: %w", err)
	}
	a := entity.NewAccessURI(base64.URLEncoding.EncodeToString(buf), userID, documentID)
	if err := s.accessURIs.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// CanAccessDocument implements the permission check shared by every
// document endpoint: the caller must own the document, or (when
// signerAccessible is true) have at least one Field on it. Destructive
// operations pass signerAccessible=false.
func (s *Service) CanAccessDocument(ctx context.Context, doc *entity.Document, callerID uuid.UUID, signerAccessible bool) (bool, error) {
	if doc.OwnerUserID == callerID {
		return true, nil
	}
	if !signerAccessible {
		return false, nil
	}
	fields, err := s.fields.ListByDocumentAndUser(ctx, doc.ID, callerID)
	if err != nil {
		return false, err
	}
	return len(fields) > 0, nil
}

func validEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}
