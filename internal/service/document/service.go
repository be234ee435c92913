// Package document implements C4: document creation (field-reference
// parsing, signator validation, seed-field creation) and owner-only
// deletion.
package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/rendis/esigncore/internal/entity"
	"github.com/rendis/esigncore/internal/port"
)

var validate = validator.New()

const maxUploadSizeDefault = 50 * 1024 * 1024

func New(
	documents port.DocumentRepository,
	files port.FileRepository,
	fileUsages port.FileUsageRepository,
	fieldUsages port.FieldUsageRepository,
	fields port.FieldRepository,
	renderedPages port.RenderedPageRepository,
	users port.UserRepository,
	storage port.StorageAdapter,
	extractor port.FieldExtractor,
	jobs port.JobEnqueuer,
	maxUploadSize int64,
) *Service {
	if maxUploadSize <= 0 {
		maxUploadSize = maxUploadSizeDefault
	}
	return &Service{
		documents:     documents,
		files:         files,
		fileUsages:    fileUsages,
		fieldUsages:   fieldUsages,
		fields:        fields,
		renderedPages: renderedPages,
		users:         users,
		storage:       storage,
		extractor:     extractor,
		jobs:          jobs,
		maxUploadSize: maxUploadSize,
	}
}

// Service implements C4.
type Service struct {
	documents     port.DocumentRepository
	files         port.FileRepository
	fileUsages    port.FileUsageRepository
	fieldUsages   port.FieldUsageRepository
	fields        port.FieldRepository
	renderedPages port.RenderedPageRepository
	users         port.UserRepository
	storage       port.StorageAdapter
	extractor     port.FieldExtractor
	jobs          port.JobEnqueuer
	maxUploadSize int64
}

// CreateInput is the input to Create.
type CreateInput struct {
	Title       string
	ContentType string
	Size        int64
	PDF         []byte
	// Signators maps a field name declared in the uploaded PDF to the email
	// of the signatory who must fill it, or nil to leave it unassigned.
	Signators map[string]*string
	OwnerID   uuid.UUID
	CallerIP  string
}

// CreateResult mirrors the {docId, warnings[]} response shape.
type CreateResult struct {
	DocumentID uuid.UUID
	Warnings   []string
}

// Create runs the ten-step document-creation procedure (§4.4): validates
// the upload, extracts and parses the PDF's fillable fields against the
// reference grammar, validates signator declarations and reference chains,
// persists Document/File/Field rows, uploads the blob, and enqueues
// locate_fields + stamp_pdf.
func (s *Service) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	if in.ContentType != "application/pdf" && in.ContentType != "application/octet-stream" {
		return nil, entity.ErrUnsupportedContentType
	}
	if in.Size > s.maxUploadSize {
		return nil, entity.ErrPayloadTooLarge
	}
	for _, email := range in.Signators {
		if email != nil && !validEmail(*email) {
			return nil, entity.ErrInvalidEmail
		}
	}

	rawFields, err := s.extractor.ExtractFields(ctx, in.PDF)
	if err != nil {
		return nil, fmt.Errorf("document: extracting fields: %w", err)
	}

	descriptors := make(map[string]entity.FieldDescriptor, len(rawFields))
	for name, raw := range rawFields {
		if d, ok := parseField(name, raw); ok {
			descriptors[name] = d
		}
	}

	if err := validateSignators(in.Signators, descriptors); err != nil {
		return nil, err
	}
	refs := referenceFields(descriptors)
	if err := validateReferences(refs, descriptors); err != nil {
		return nil, err
	}

	owner, err := s.users.FindByID(ctx, in.OwnerID)
	if err != nil {
		return nil, err
	}

	doc := entity.NewDocument(in.Title, in.OwnerID)
	file := entity.NewFile(doc.ID.String())
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("document: creating document: %w", err)
	}
	if err := s.files.Create(ctx, file); err != nil {
		return nil, fmt.Errorf("document: creating file: %w", err)
	}
	fileID := file.ID
	creation := entity.NewFileUsage(doc.ID, &fileID, entity.FileUsageCreated, map[string]any{
		"ip":   in.CallerIP,
		"user": owner.Username,
	})
	if err := s.fileUsages.Create(ctx, creation); err != nil {
		return nil, fmt.Errorf("document: recording file usage: %w", err)
	}
	if err := s.jobs.EnqueueInvokeWebhooksFileUsage(ctx, creation.ID); err != nil {
		return nil, fmt.Errorf("document: enqueueing invoke_webhooks_fileusage: %w", err)
	}

	if err := s.storage.Upload(ctx, file.ID.String(), "application/pdf", bytes.NewReader(in.PDF), in.Size); err != nil {
		return nil, fmt.Errorf("document: uploading pdf: %w", err)
	}

	fieldIDs := make(map[string]uuid.UUID, len(in.Signators))
	for name, email := range in.Signators {
		desc := descriptors[name]
		var userID *uuid.UUID
		if email != nil {
			signer, err := s.lookupOrCreateSignator(ctx, owner.BusinessID, *email)
			if err != nil {
				return nil, err
			}
			userID = &signer.ID
		}
		f := entity.NewField(doc.ID, userID, name, desc.Type, nil)
		if err := s.fields.Create(ctx, f); err != nil {
			return nil, fmt.Errorf("document: creating field %q: %w", name, err)
		}
		seed := entity.NewFieldUsage(f.ID, nil, entity.FieldUsageEmpty, nil)
		if err := s.createFieldUsage(ctx, seed); err != nil {
			return nil, err
		}
		fieldIDs[name] = f.ID
	}

	var warnings []string
	for _, ref := range refs {
		parentID, ok := fieldIDs[ref.Parent]
		if !ok {
			warnings = append(warnings, fmt.Sprintf(
				"parent field %s of field %s was not present; check that it doesn't depend on a different reference field or that the parent field exists",
				ref.Parent, ref.Name,
			))
			continue
		}
		if parentDesc := descriptors[ref.Parent]; parentDesc.Type != entity.FieldTypeSignature && parentDesc.Type != entity.FieldTypeText {
			return nil, entity.ErrParentNotSignatureOrText
		}
		dep := entity.NewField(doc.ID, nil, ref.Name, ref.Type, &parentID)
		if err := s.fields.Create(ctx, dep); err != nil {
			return nil, fmt.Errorf("document: creating dependent field %q: %w", ref.Name, err)
		}
		seed := entity.NewFieldUsage(dep.ID, nil, entity.FieldUsageEmpty, nil)
		if err := s.createFieldUsage(ctx, seed); err != nil {
			return nil, err
		}
	}

	if err := s.jobs.EnqueueLocateFields(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("document: enqueueing locate_fields: %w", err)
	}
	if err := s.jobs.EnqueueStampPDF(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("document: enqueueing stamp_pdf: %w", err)
	}

	return &CreateResult{DocumentID: doc.ID, Warnings: warnings}, nil
}

func (s *Service) createFieldUsage(ctx context.Context, u *entity.FieldUsage) error {
	if err := s.fieldUsages.Create(ctx, u); err != nil {
		return fmt.Errorf("document: seeding field usage: %w", err)
	}
	return nil
}

func (s *Service) lookupOrCreateSignator(ctx context.Context, businessID uuid.UUID, email string) (*entity.User, error) {
	u, err := s.users.FindByUsername(ctx, businessID, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, entity.ErrNotFound) {
		return nil, err
	}
	u = entity.NewUser(businessID, email, nil)
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("document: creating signator user: %w", err)
	}
	return u, nil
}

// Delete removes a document and everything it owns (owner-only; the
// permission check happens in the caller). It gathers every blob name the
// document ever referenced before the cascading repository delete removes
// the rows that name them, then hands the names to the caller to enqueue
// delete_blobs — outside this call so the enqueue happens after commit.
func (s *Service) Delete(ctx context.Context, collector port.BlobNameCollector, documentID uuid.UUID) ([]string, error) {
	names, err := collector.CollectBlobNames(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("document: collecting blob names: %w", err)
	}
	if err := s.documents.Delete(ctx, documentID); err != nil {
		return nil, fmt.Errorf("document: deleting: %w", err)
	}
	if err := s.jobs.EnqueueDeleteBlobs(ctx, names); err != nil {
		return nil, fmt.Errorf("document: enqueueing delete_blobs: %w", err)
	}
	return names, nil
}

func validEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}
