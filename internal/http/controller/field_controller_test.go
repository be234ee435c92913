package controller

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/esigncore/internal/entity"
	"github.com/rendis/esigncore/internal/service/fill"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- no-op port fakes, just enough to construct a *fill.Service for
// request-parsing and status-code-mapping tests; none of these cases reach
// the repositories. ---

type noopFields struct{}

func (noopFields) Create(ctx context.Context, f *entity.Field) error { return nil }
func (noopFields) FindByID(ctx context.Context, id uuid.UUID) (*entity.Field, error) {
	return nil, entity.ErrFieldNotFound
}
func (noopFields) FindByDocumentAndName(ctx context.Context, documentID uuid.UUID, name string) (*entity.Field, error) {
	return nil, entity.ErrFieldNotFound
}
func (noopFields) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*entity.Field, error) {
	return nil, nil
}
func (noopFields) ListByParent(ctx context.Context, parentID uuid.UUID) ([]*entity.Field, error) {
	return nil, nil
}
func (noopFields) ListByDocumentAndUser(ctx context.Context, documentID, userID uuid.UUID) ([]*entity.Field, error) {
	return nil, nil
}

type noopFieldUsages struct{}

func (noopFieldUsages) Create(ctx context.Context, u *entity.FieldUsage) error { return nil }
func (noopFieldUsages) FindByID(ctx context.Context, id int64) (*entity.FieldUsage, error) {
	return nil, entity.ErrNotFound
}
func (noopFieldUsages) CurrentValue(ctx context.Context, fieldID uuid.UUID) (*entity.FieldUsage, error) {
	return nil, entity.ErrNotFound
}
func (noopFieldUsages) ListByDocumentJoinedUser(ctx context.Context, documentID uuid.UUID) ([]*entity.FieldUsage, map[uuid.UUID]string, error) {
	return nil, nil, nil
}
func (noopFieldUsages) FilledFieldIDs(ctx context.Context, documentID uuid.UUID) (map[uuid.UUID]bool, error) {
	return nil, nil
}
func (noopFieldUsages) UnfilledUserFields(ctx context.Context, documentID uuid.UUID) ([]*entity.Field, error) {
	return nil, nil
}
func (noopFieldUsages) AccountFields(ctx context.Context, userID uuid.UUID) ([]*entity.AccountField, error) {
	return nil, nil
}

type noopFileUsages struct{}

func (noopFileUsages) Create(ctx context.Context, u *entity.FileUsage) error { return nil }
func (noopFileUsages) FindByID(ctx context.Context, id int64) (*entity.FileUsage, error) {
	return nil, entity.ErrNotFound
}
func (noopFileUsages) ListByDocument(ctx context.Context, documentID uuid.UUID, excludeTypes ...entity.FileUsageType) ([]*entity.FileUsage, error) {
	return nil, nil
}
func (noopFileUsages) LatestByTypes(ctx context.Context, documentID uuid.UUID, types ...entity.FileUsageType) (*entity.FileUsage, error) {
	return nil, entity.ErrNotFound
}
func (noopFileUsages) LatestOfType(ctx context.Context, documentID uuid.UUID, t entity.FileUsageType) (*entity.FileUsage, error) {
	return nil, entity.ErrNotFound
}

type noopFiles struct{}

func (noopFiles) Create(ctx context.Context, f *entity.File) error { return nil }
func (noopFiles) FindByID(ctx context.Context, id uuid.UUID) (*entity.File, error) {
	return nil, entity.ErrNotFound
}

type noopStorage struct{}

func (noopStorage) Upload(ctx context.Context, blobName, contentType string, data io.Reader, size int64) error {
	return nil
}
func (noopStorage) Download(ctx context.Context, blobName string) ([]byte, error) { return nil, nil }
func (noopStorage) SignedDownloadURL(ctx context.Context, blobName string, ttl time.Duration) (string, error) {
	return "", nil
}
func (noopStorage) Delete(ctx context.Context, blobName string) error { return nil }

type noopJobs struct{}

func (noopJobs) EnqueueLocateFields(ctx context.Context, documentID uuid.UUID) error { return nil }
func (noopJobs) EnqueueStampPDF(ctx context.Context, documentID uuid.UUID) error     { return nil }
func (noopJobs) EnqueueRenderPages(ctx context.Context, documentID uuid.UUID) error  { return nil }
func (noopJobs) EnqueueSendEmail(ctx context.Context, documentID uuid.UUID, email *string) error {
	return nil
}
func (noopJobs) EnqueueInvokeWebhooksFileUsage(ctx context.Context, fileUsageID int64) error {
	return nil
}
func (noopJobs) EnqueueInvokeWebhooksFieldUsage(ctx context.Context, fieldUsageID int64) error {
	return nil
}
func (noopJobs) EnqueueDeleteBlobs(ctx context.Context, blobNames []string) error { return nil }

func fillServiceDeps() *fill.Service {
	return fill.New(noopFields{}, noopFieldUsages{}, noopFileUsages{}, noopFiles{}, noopStorage{}, noopJobs{}, nil)
}

func TestFillText_MissingAuth(t *testing.T) {
	ctrl := NewFieldController(fillServiceDeps())
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/field/"+uuid.New().String()+"/fill-text", strings.NewReader(`{"value":"x"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}

	ctrl.FillText(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFillText_BadFieldID(t *testing.T) {
	ctrl := NewFieldController(fillServiceDeps())
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/field/not-a-uuid/fill-text", strings.NewReader(`{"value":"x"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user_id", uuid.New())
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	ctrl.FillText(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFillText_InvalidBody(t *testing.T) {
	ctrl := NewFieldController(fillServiceDeps())
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/field/"+uuid.New().String()+"/fill-text", bytes.NewReader([]byte(`not json`)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user_id", uuid.New())
	c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}

	ctrl.FillText(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFillText_FieldNotFound(t *testing.T) {
	ctrl := NewFieldController(fillServiceDeps())
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/field/"+uuid.New().String()+"/fill-text", strings.NewReader(`{"value":"x"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user_id", uuid.New())
	c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}

	ctrl.FillText(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestParseFieldKey(t *testing.T) {
	id := uuid.New()

	got, ok := parseFieldKey("text:"+id.String(), "text:")
	require.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = parseFieldKey("png:"+id.String(), "text:")
	assert.False(t, ok)

	_, ok = parseFieldKey("text:not-a-uuid", "text:")
	assert.False(t, ok)
}
