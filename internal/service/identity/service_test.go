package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/esigncore/internal/entity"
)

type fakeFieldRepo struct {
	byDocAndUser map[uuid.UUID][]*entity.Field
}

func (f *fakeFieldRepo) Create(ctx context.Context, field *entity.Field) error { return nil }
func (f *fakeFieldRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Field, error) {
	return nil, entity.ErrNotFound
}
func (f *fakeFieldRepo) FindByDocumentAndName(ctx context.Context, documentID uuid.UUID, name string) (*entity.Field, error) {
	return nil, entity.ErrNotFound
}
func (f *fakeFieldRepo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*entity.Field, error) {
	return nil, nil
}
func (f *fakeFieldRepo) ListByParent(ctx context.Context, parentID uuid.UUID) ([]*entity.Field, error) {
	return nil, nil
}
func (f *fakeFieldRepo) ListByDocumentAndUser(ctx context.Context, documentID, userID uuid.UUID) ([]*entity.Field, error) {
	return f.byDocAndUser[documentID], nil
}

func newTestService(fields *fakeFieldRepo) *Service {
	return New(nil, nil, nil, fields, Config{
		JWTSecret:       []byte("test-secret"),
		DefaultTokenTTL: time.Hour,
		BcryptCost:      4,
		AccessURIBytes:  accessURIBytesMin,
	})
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	s := newTestService(&fakeFieldRepo{})
	userID := uuid.New()
	docID := uuid.New()

	token, err := s.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()},
		Doc:              &docID,
	})
	require.NoError(t, err)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.Subject)
	require.NotNil(t, claims.Doc)
	assert.Equal(t, docID, *claims.Doc)
}

func TestVerifyRejectsTamperedSecret(t *testing.T) {
	signer := newTestService(&fakeFieldRepo{})
	token, err := signer.sign(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.New().String()}})
	require.NoError(t, err)

	verifier := newTestService(&fakeFieldRepo{})
	verifier.cfg.JWTSecret = []byte("different-secret")

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, entity.ErrUnauthorized)
}

func TestCanAccessDocument(t *testing.T) {
	owner := uuid.New()
	signer := uuid.New()
	stranger := uuid.New()
	doc := &entity.Document{ID: uuid.New(), OwnerUserID: owner}

	fields := &fakeFieldRepo{byDocAndUser: map[uuid.UUID][]*entity.Field{
		doc.ID: {{ID: uuid.New()}},
	}}
	s := newTestService(fields)

	t.Run("owner always allowed", func(t *testing.T) {
		ok, err := s.CanAccessDocument(context.Background(), doc, owner, false)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("signer allowed only when signerAccessible", func(t *testing.T) {
		ok, err := s.CanAccessDocument(context.Background(), doc, signer, true)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.CanAccessDocument(context.Background(), doc, signer, false)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("stranger never allowed", func(t *testing.T) {
		ok, err := s.CanAccessDocument(context.Background(), doc, stranger, true)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
