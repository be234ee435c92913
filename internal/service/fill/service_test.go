package fill

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/esigncore/internal/entity"
)

type fakeFields struct {
	byID         map[uuid.UUID]*entity.Field
	byParent     map[uuid.UUID][]*entity.Field
	byDocAndUser map[uuid.UUID][]*entity.Field
}

func (f *fakeFields) Create(ctx context.Context, field *entity.Field) error { return nil }
func (f *fakeFields) FindByID(ctx context.Context, id uuid.UUID) (*entity.Field, error) {
	fl, ok := f.byID[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return fl, nil
}
func (f *fakeFields) FindByDocumentAndName(ctx context.Context, documentID uuid.UUID, name string) (*entity.Field, error) {
	return nil, entity.ErrNotFound
}
func (f *fakeFields) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*entity.Field, error) {
	return nil, nil
}
func (f *fakeFields) ListByParent(ctx context.Context, parentID uuid.UUID) ([]*entity.Field, error) {
	return f.byParent[parentID], nil
}
func (f *fakeFields) ListByDocumentAndUser(ctx context.Context, documentID, userID uuid.UUID) ([]*entity.Field, error) {
	return f.byDocAndUser[documentID], nil
}

type fakeFieldUsages struct {
	created  []*entity.FieldUsage
	unfilled []*entity.Field
}

func (u *fakeFieldUsages) Create(ctx context.Context, fu *entity.FieldUsage) error {
	u.created = append(u.created, fu)
	return nil
}
func (u *fakeFieldUsages) FindByID(ctx context.Context, id int64) (*entity.FieldUsage, error) {
	return nil, entity.ErrNotFound
}
func (u *fakeFieldUsages) CurrentValue(ctx context.Context, fieldID uuid.UUID) (*entity.FieldUsage, error) {
	return nil, entity.ErrNotFound
}
func (u *fakeFieldUsages) ListByDocumentJoinedUser(ctx context.Context, documentID uuid.UUID) ([]*entity.FieldUsage, map[uuid.UUID]string, error) {
	return nil, nil, nil
}
func (u *fakeFieldUsages) FilledFieldIDs(ctx context.Context, documentID uuid.UUID) (map[uuid.UUID]bool, error) {
	return nil, nil
}
func (u *fakeFieldUsages) UnfilledUserFields(ctx context.Context, documentID uuid.UUID) ([]*entity.Field, error) {
	return u.unfilled, nil
}
func (u *fakeFieldUsages) AccountFields(ctx context.Context, userID uuid.UUID) ([]*entity.AccountField, error) {
	return nil, nil
}

type fakeFileUsages struct {
	created []*entity.FileUsage
}

func (u *fakeFileUsages) Create(ctx context.Context, fu *entity.FileUsage) error {
	u.created = append(u.created, fu)
	return nil
}
func (u *fakeFileUsages) FindByID(ctx context.Context, id int64) (*entity.FileUsage, error) {
	return nil, entity.ErrNotFound
}
func (u *fakeFileUsages) ListByDocument(ctx context.Context, documentID uuid.UUID, excludeTypes ...entity.FileUsageType) ([]*entity.FileUsage, error) {
	return nil, nil
}
func (u *fakeFileUsages) LatestByTypes(ctx context.Context, documentID uuid.UUID, types ...entity.FileUsageType) (*entity.FileUsage, error) {
	return nil, entity.ErrNotFound
}
func (u *fakeFileUsages) LatestOfType(ctx context.Context, documentID uuid.UUID, t entity.FileUsageType) (*entity.FileUsage, error) {
	return nil, entity.ErrNotFound
}

type fakeFiles struct{}

func (f *fakeFiles) Create(ctx context.Context, file *entity.File) error { return nil }
func (f *fakeFiles) FindByID(ctx context.Context, id uuid.UUID) (*entity.File, error) {
	return nil, entity.ErrNotFound
}

type fakeJobs struct {
	stampPDFCalls      []uuid.UUID
	fileUsageWebhooks  []int64
	fieldUsageWebhooks []int64
}

func (j *fakeJobs) EnqueueLocateFields(ctx context.Context, documentID uuid.UUID) error { return nil }
func (j *fakeJobs) EnqueueStampPDF(ctx context.Context, documentID uuid.UUID) error {
	j.stampPDFCalls = append(j.stampPDFCalls, documentID)
	return nil
}
func (j *fakeJobs) EnqueueRenderPages(ctx context.Context, documentID uuid.UUID) error { return nil }
func (j *fakeJobs) EnqueueSendEmail(ctx context.Context, documentID uuid.UUID, email *string) error {
	return nil
}
func (j *fakeJobs) EnqueueInvokeWebhooksFileUsage(ctx context.Context, fileUsageID int64) error {
	j.fileUsageWebhooks = append(j.fileUsageWebhooks, fileUsageID)
	return nil
}
func (j *fakeJobs) EnqueueInvokeWebhooksFieldUsage(ctx context.Context, fieldUsageID int64) error {
	j.fieldUsageWebhooks = append(j.fieldUsageWebhooks, fieldUsageID)
	return nil
}
func (j *fakeJobs) EnqueueDeleteBlobs(ctx context.Context, blobNames []string) error { return nil }

func TestFillText_WrongOwnerRejected(t *testing.T) {
	owner := uuid.New()
	caller := uuid.New()
	docID := uuid.New()
	fieldID := uuid.New()

	fields := &fakeFields{byID: map[uuid.UUID]*entity.Field{
		fieldID: {ID: fieldID, DocumentID: docID, UserID: &owner, Type: entity.FieldTypeText},
	}}
	jobs := &fakeJobs{}
	s := New(fields, &fakeFieldUsages{}, &fakeFileUsages{}, &fakeFiles{}, nil, jobs, nil)

	err := s.FillText(context.Background(), caller, fieldID, "hello", "1.2.3.4")
	assert.ErrorIs(t, err, entity.ErrFieldDoesNotBelongToCaller)
	assert.Empty(t, jobs.stampPDFCalls)
}

func TestFillText_CascadesToDateDependent(t *testing.T) {
	caller := uuid.New()
	docID := uuid.New()
	fieldID := uuid.New()
	depID := uuid.New()

	fields := &fakeFields{
		byID: map[uuid.UUID]*entity.Field{
			fieldID: {ID: fieldID, DocumentID: docID, UserID: &caller, Type: entity.FieldTypeSignature},
		},
		byParent: map[uuid.UUID][]*entity.Field{
			fieldID: {{ID: depID, DocumentID: docID, Type: entity.FieldTypeDate, ParentID: &fieldID}},
		},
	}
	fieldUsages := &fakeFieldUsages{}
	jobs := &fakeJobs{}
	s := New(fields, fieldUsages, &fakeFileUsages{}, &fakeFiles{}, nil, jobs, nil)

	err := s.FillText(context.Background(), caller, fieldID, "value", "1.2.3.4")
	require.NoError(t, err)

	require.Len(t, fieldUsages.created, 2)
	assert.Equal(t, fieldID, fieldUsages.created[0].FieldID)
	assert.Equal(t, depID, fieldUsages.created[1].FieldID)
	assert.Equal(t, []uuid.UUID{docID}, jobs.stampPDFCalls)
	assert.Len(t, jobs.fieldUsageWebhooks, 1, "only the directly filled field enqueues a webhook, not the cascaded dependent")
}

func TestAfterFill_RecordsCompletenessWhenNoFieldsRemain(t *testing.T) {
	caller := uuid.New()
	docID := uuid.New()
	fieldID := uuid.New()

	fields := &fakeFields{byID: map[uuid.UUID]*entity.Field{
		fieldID: {ID: fieldID, DocumentID: docID, UserID: &caller, Type: entity.FieldTypeText},
	}}
	fileUsages := &fakeFileUsages{}
	jobs := &fakeJobs{}
	s := New(fields, &fakeFieldUsages{}, fileUsages, &fakeFiles{}, nil, jobs, nil)

	err := s.FillText(context.Background(), caller, fieldID, "value", "1.2.3.4")
	require.NoError(t, err)

	require.Len(t, fileUsages.created, 1)
	assert.Equal(t, entity.FileUsageAllFieldsFilled, fileUsages.created[0].Type)
	assert.Equal(t, []int64{fileUsages.created[0].ID}, jobs.fileUsageWebhooks)
}

func TestAfterFill_SkipsCompletenessWhenFieldsRemain(t *testing.T) {
	caller := uuid.New()
	docID := uuid.New()
	fieldID := uuid.New()

	fields := &fakeFields{byID: map[uuid.UUID]*entity.Field{
		fieldID: {ID: fieldID, DocumentID: docID, UserID: &caller, Type: entity.FieldTypeText},
	}}
	fieldUsages := &fakeFieldUsages{unfilled: []*entity.Field{{ID: uuid.New()}}}
	fileUsages := &fakeFileUsages{}
	jobs := &fakeJobs{}
	s := New(fields, fieldUsages, fileUsages, &fakeFiles{}, nil, jobs, nil)

	err := s.FillText(context.Background(), caller, fieldID, "value", "1.2.3.4")
	require.NoError(t, err)
	assert.Empty(t, fileUsages.created)
	assert.Equal(t, []uuid.UUID{docID}, jobs.stampPDFCalls)
}

func TestAgreeTOS_RequiresCallerOnDocument(t *testing.T) {
	s := New(&fakeFields{}, &fakeFieldUsages{}, &fakeFileUsages{}, &fakeFiles{}, nil, &fakeJobs{}, nil)
	err := s.AgreeTOS(context.Background(), uuid.New(), uuid.New(), "1.2.3.4")
	assert.ErrorIs(t, err, entity.ErrUserNotOnDocument)
}

func TestAgreeTOS_RecordsUsageAndEnqueuesWebhook(t *testing.T) {
	caller := uuid.New()
	docID := uuid.New()

	fields := &fakeFields{byDocAndUser: map[uuid.UUID][]*entity.Field{
		docID: {{ID: uuid.New(), DocumentID: docID, UserID: &caller}},
	}}
	fileUsages := &fakeFileUsages{}
	jobs := &fakeJobs{}
	s := New(fields, &fakeFieldUsages{}, fileUsages, &fakeFiles{}, nil, jobs, nil)

	err := s.AgreeTOS(context.Background(), caller, docID, "1.2.3.4")
	require.NoError(t, err)

	require.Len(t, fileUsages.created, 1)
	assert.Equal(t, entity.FileUsageAgreeTOS, fileUsages.created[0].Type)
	assert.Equal(t, []int64{fileUsages.created[0].ID}, jobs.fileUsageWebhooks)
}
