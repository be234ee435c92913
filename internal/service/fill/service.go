// Package fill implements C5: accepting text/image field fills,
// propagating to dependent fields, and deciding document completeness.
package fill

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rendis/esigncore/internal/entity"
	"github.com/rendis/esigncore/internal/port"
)

func New(
	fields port.FieldRepository,
	fieldUsages port.FieldUsageRepository,
	fileUsages port.FileUsageRepository,
	files port.FileRepository,
	storage port.StorageAdapter,
	jobs port.JobEnqueuer,
	loc *time.Location,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		fields:      fields,
		fieldUsages: fieldUsages,
		fileUsages:  fileUsages,
		files:       files,
		storage:     storage,
		jobs:        jobs,
		loc:         loc,
	}
}

// Service implements C5.
type Service struct {
	fields      port.FieldRepository
	fieldUsages port.FieldUsageRepository
	fileUsages  port.FileUsageRepository
	files       port.FileRepository
	storage     port.StorageAdapter
	jobs        port.JobEnqueuer
	loc         *time.Location
}

// Entry is one item of a bulk-fill request: exactly one of Value/PNG is set.
type Entry struct {
	FieldID uuid.UUID
	Value   *string
	PNG     []byte
}

// FillSignature implements §4.5 "Fill signature": validates ownership,
// stores the PNG, cascades dependents, checks completeness, and enqueues
// exactly one stamp_pdf.
func (s *Service) FillSignature(ctx context.Context, callerID uuid.UUID, fieldID uuid.UUID, png []byte, callerIP string) error {
	f, err := s.authorize(ctx, callerID, fieldID)
	if err != nil {
		return err
	}

	fileID, err := s.storeImage(ctx, png)
	if err != nil {
		return err
	}
	usage := entity.NewFieldUsage(f.ID, fileID, entity.FieldUsageFilled, map[string]any{"ip": callerIP})
	if err := s.fieldUsages.Create(ctx, usage); err != nil {
		return fmt.Errorf("fill: recording fill: %w", err)
	}
	if err := s.jobs.EnqueueInvokeWebhooksFieldUsage(ctx, usage.ID); err != nil {
		return fmt.Errorf("fill: enqueueing invoke_webhooks_fieldusage: %w", err)
	}

	if err := s.cascadeDependents(ctx, f.ID); err != nil {
		return err
	}
	return s.afterFill(ctx, f.DocumentID)
}

// FillText implements §4.5 "Fill text": same flow without a storage upload.
func (s *Service) FillText(ctx context.Context, callerID uuid.UUID, fieldID uuid.UUID, value string, callerIP string) error {
	f, err := s.authorize(ctx, callerID, fieldID)
	if err != nil {
		return err
	}

	usage := entity.NewFieldUsage(f.ID, nil, entity.FieldUsageFilled, map[string]any{"ip": callerIP, "value": value})
	if err := s.fieldUsages.Create(ctx, usage); err != nil {
		return fmt.Errorf("fill: recording fill: %w", err)
	}
	if err := s.jobs.EnqueueInvokeWebhooksFieldUsage(ctx, usage.ID); err != nil {
		return fmt.Errorf("fill: enqueueing invoke_webhooks_fieldusage: %w", err)
	}

	if err := s.cascadeDependents(ctx, f.ID); err != nil {
		return err
	}
	return s.afterFill(ctx, f.DocumentID)
}

// BulkFill applies a map of field-id -> entry, fanning the per-entry
// validation/cascade/upload work out with errgroup, then emits a single
// stamp_pdf at the end (at-most-one stamp per commit minimizes churn).
func (s *Service) BulkFill(ctx context.Context, callerID uuid.UUID, documentID uuid.UUID, entries []Entry, callerIP string) error {
	if len(entries) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, e := range entries {
		e := e
		g.Go(func() error {
			f, err := s.authorize(gctx, callerID, e.FieldID)
			if err != nil {
				return err
			}
			if f.DocumentID != documentID {
				return entity.ErrFieldDoesNotBelongToCaller
			}

			var fileID *uuid.UUID
			data := map[string]any{"ip": callerIP}
			switch {
			case e.PNG != nil:
				id, err := s.storeImage(gctx, e.PNG)
				if err != nil {
					return err
				}
				fileID = id
			case e.Value != nil:
				data["value"] = *e.Value
			default:
				return entity.ErrInvalidInput
			}

			usage := entity.NewFieldUsage(f.ID, fileID, entity.FieldUsageFilled, data)
			if err := s.fieldUsages.Create(gctx, usage); err != nil {
				return fmt.Errorf("fill: recording fill for %s: %w", f.ID, err)
			}
			if err := s.jobs.EnqueueInvokeWebhooksFieldUsage(gctx, usage.ID); err != nil {
				return fmt.Errorf("fill: enqueueing invoke_webhooks_fieldusage for %s: %w", f.ID, err)
			}
			return s.cascadeDependents(gctx, f.ID)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return s.afterFill(ctx, documentID)
}

// AgreeTOS implements §4.5 "Agree-TOS": requires the caller to have at
// least one field on the document.
func (s *Service) AgreeTOS(ctx context.Context, callerID, documentID uuid.UUID, callerIP string) error {
	callerFields, err := s.fields.ListByDocumentAndUser(ctx, documentID, callerID)
	if err != nil {
		return err
	}
	if len(callerFields) == 0 {
		return entity.ErrUserNotOnDocument
	}

	usage := entity.NewFileUsage(documentID, nil, entity.FileUsageAgreeTOS, map[string]any{
		"ip":   callerIP,
		"user": callerID.String(),
		"uid":  callerID.String(),
	})
	if err := s.fileUsages.Create(ctx, usage); err != nil {
		return fmt.Errorf("fill: recording agree-tos: %w", err)
	}
	if err := s.jobs.EnqueueInvokeWebhooksFileUsage(ctx, usage.ID); err != nil {
		return fmt.Errorf("fill: enqueueing invoke_webhooks_fileusage: %w", err)
	}
	return nil
}

func (s *Service) authorize(ctx context.Context, callerID, fieldID uuid.UUID) (*entity.Field, error) {
	f, err := s.fields.FindByID(ctx, fieldID)
	if err != nil {
		return nil, entity.ErrFieldNotFound
	}
	if f.UserID == nil || *f.UserID != callerID {
		return nil, entity.ErrFieldDoesNotBelongToCaller
	}
	return f, nil
}

func (s *Service) storeImage(ctx context.Context, png []byte) (*uuid.UUID, error) {
	file := entity.NewFile(uuid.New().String())
	if err := s.files.Create(ctx, file); err != nil {
		return nil, fmt.Errorf("fill: creating file: %w", err)
	}
	if err := s.storage.Upload(ctx, file.ID.String(), "image/png", bytes.NewReader(png), int64(len(png))); err != nil {
		return nil, fmt.Errorf("fill: uploading signature image: %w", err)
	}
	id := file.ID
	return &id, nil
}

// cascadeDependents appends a FieldUsage(filled) to every Field whose
// parent is fieldID. Today the only supported dependent kind is `date`
// (global invariant 1); anything else is a programmer-invariant violation.
func (s *Service) cascadeDependents(ctx context.Context, fieldID uuid.UUID) error {
	dependents, err := s.fields.ListByParent(ctx, fieldID)
	if err != nil {
		return fmt.Errorf("fill: listing dependents: %w", err)
	}
	today := time.Now().In(s.loc).Format("2006-01-02")
	for _, dep := range dependents {
		if dep.Type != entity.FieldTypeDate {
			return entity.ErrUnsupportedDependentType
		}
		usage := entity.NewFieldUsage(dep.ID, nil, entity.FieldUsageFilled, map[string]any{"value": today})
		if err := s.fieldUsages.Create(ctx, usage); err != nil {
			return fmt.Errorf("fill: cascading to dependent %s: %w", dep.ID, err)
		}
	}
	return nil
}

// afterFill checks completeness and, on the incomplete->complete
// transition, appends FileUsage(all-fields-filled) and enqueues stamp_pdf.
// Duplicate all-fields-filled emission under concurrent final fills is
// acceptable; downstream consumers dedupe by row id.
func (s *Service) afterFill(ctx context.Context, documentID uuid.UUID) error {
	unfilled, err := s.fieldUsages.UnfilledUserFields(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fill: checking completeness: %w", err)
	}
	if len(unfilled) == 0 {
		usage := entity.NewFileUsage(documentID, nil, entity.FileUsageAllFieldsFilled, nil)
		if err := s.fileUsages.Create(ctx, usage); err != nil {
			return fmt.Errorf("fill: recording completeness: %w", err)
		}
		if err := s.jobs.EnqueueInvokeWebhooksFileUsage(ctx, usage.ID); err != nil {
			return fmt.Errorf("fill: enqueueing invoke_webhooks_fileusage: %w", err)
		}
	}
	if err := s.jobs.EnqueueStampPDF(ctx, documentID); err != nil {
		return fmt.Errorf("fill: enqueueing stamp_pdf: %w", err)
	}
	return nil
}
