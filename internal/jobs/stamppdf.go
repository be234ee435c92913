package jobs

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/rendis/esigncore/internal/entity"
	"github.com/rendis/esigncore/internal/port"
	"github.com/rendis/esigncore/internal/service/audit"
)

// StampPDFWorker is stamp_pdf (§4.6): composes field descriptors from
// current field state, calls the external stamp service, concatenates the
// rendered audit log, and uploads the result. A failure after the blob is
// uploaded and the File row committed is recorded as a failed endstamp row
// (file=null) instead of being retried, and fires the file-usage webhook
// for that row — never the field-usage one, regardless of what the task's
// own name might suggest (DESIGN.md §Resolved Open Questions #4).
type StampPDFWorker struct {
	river.WorkerDefaults[StampPDFArgs]

	Fields      port.FieldRepository
	FieldUsages port.FieldUsageRepository
	FileUsages  port.FileUsageRepository
	Files       port.FileRepository
	Storage     port.StorageAdapter
	Stamper     port.Stamper
	Concat      port.Concat
	Audit       *audit.Service
	Jobs        port.JobEnqueuer
}

func (w *StampPDFWorker) Timeout(*river.Job[StampPDFArgs]) time.Duration { return taskTimeLimit }

func (w *StampPDFWorker) Work(ctx context.Context, job *river.Job[StampPDFArgs]) error {
	docID := job.Args.DocumentID

	req, err := w.buildStampRequest(ctx, docID)
	if err != nil {
		return fmt.Errorf("stamp_pdf: composing field descriptors: %w", err)
	}
	stamped, err := w.Stamper.Stamp(ctx, req)
	if err != nil {
		return fmt.Errorf("stamp_pdf: calling stamp service: %w", err)
	}
	auditPDF, err := w.Audit.MaterializePDF(ctx, docID)
	if err != nil {
		return fmt.Errorf("stamp_pdf: rendering audit log: %w", err)
	}
	final, err := w.Concat.ConcatPDF(ctx, stamped, auditPDF)
	if err != nil {
		return fmt.Errorf("stamp_pdf: concatenating audit log: %w", err)
	}

	fileID := uuid.New()
	if err := w.Storage.Upload(ctx, fileID.String(), "application/pdf", bytes.NewReader(final), int64(len(final))); err != nil {
		return fmt.Errorf("stamp_pdf: uploading result: %w", err)
	}
	file := &entity.File{ID: fileID, Filename: fileID.String(), CreatedAt: time.Now().UTC()}
	if err := w.Files.Create(ctx, file); err != nil {
		return fmt.Errorf("stamp_pdf: creating file row: %w", err)
	}

	// Anything past this point is a persisted-blob failure: record it
	// instead of retrying the whole stamp.
	usage := entity.NewFileUsage(docID, &fileID, entity.FileUsageEndstamp, nil)
	if err := w.FileUsages.Create(ctx, usage); err != nil {
		return w.recordFailure(ctx, docID, err)
	}
	if err := w.Jobs.EnqueueRenderPages(ctx, docID); err != nil {
		return w.recordFailure(ctx, docID, err)
	}
	return nil
}

func (w *StampPDFWorker) recordFailure(ctx context.Context, docID uuid.UUID, cause error) error {
	usage := entity.NewFileUsage(docID, nil, entity.FileUsageEndstamp, map[string]any{"error": cause.Error()})
	if err := w.FileUsages.Create(ctx, usage); err != nil {
		return fmt.Errorf("stamp_pdf: recording failure: %w", err)
	}
	return w.Jobs.EnqueueInvokeWebhooksFileUsage(ctx, usage.ID)
}

// buildStampRequest fetches the latest source PDF and the current value of
// every field on the document: signatures resolve to an embedded image,
// filled text/date fields resolve to their literal value, unfilled fields
// resolve to a blank.
func (w *StampPDFWorker) buildStampRequest(ctx context.Context, docID uuid.UUID) (port.StampRequest, error) {
	fu, err := w.FileUsages.LatestByTypes(ctx, docID, entity.FileUsageUpdated, entity.FileUsageCreated)
	if err != nil {
		return port.StampRequest{}, err
	}
	pdf, err := w.Storage.Download(ctx, fu.FileID.String())
	if err != nil {
		return port.StampRequest{}, err
	}

	fields, err := w.Fields.ListByDocument(ctx, docID)
	if err != nil {
		return port.StampRequest{}, err
	}

	req := port.StampRequest{PDF: pdf, Images: map[string][]byte{}}
	for _, f := range fields {
		current, err := w.FieldUsages.CurrentValue(ctx, f.ID)
		filled := err == nil && current.Type == entity.FieldUsageFilled

		switch {
		case f.Type == entity.FieldTypeSignature && filled && current.FileID != nil:
			png, err := w.Storage.Download(ctx, current.FileID.String())
			if err != nil {
				return port.StampRequest{}, fmt.Errorf("downloading signature image for %q: %w", f.Name, err)
			}
			req.Images[f.Name] = png
			req.Fields = append(req.Fields, port.StampField{Name: f.Name, Type: port.StampFieldImage, Value: f.Name})
		case filled:
			value, _ := current.Data["value"].(string)
			req.Fields = append(req.Fields, port.StampField{Name: f.Name, Type: port.StampFieldText, Value: value})
		default:
			req.Fields = append(req.Fields, port.StampField{Name: f.Name, Type: port.StampFieldBlank})
		}
	}
	return req, nil
}
