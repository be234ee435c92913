package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"

	"github.com/rendis/esigncore/internal/port"
)

// Enqueuer implements port.JobEnqueuer against a river.Client, so that
// internal/service never imports riverqueue/river directly. Every job is
// inserted with client.Insert, outside any transaction the caller holds.
type Enqueuer struct {
	client *river.Client[pgx.Tx]
}

func NewEnqueuer(client *river.Client[pgx.Tx]) *Enqueuer {
	return &Enqueuer{client: client}
}

var _ port.JobEnqueuer = (*Enqueuer)(nil)

func (e *Enqueuer) EnqueueLocateFields(ctx context.Context, documentID uuid.UUID) error {
	_, err := e.client.Insert(ctx, LocateFieldsArgs{DocumentID: documentID}, nil)
	return wrap("locate_fields", err)
}

func (e *Enqueuer) EnqueueStampPDF(ctx context.Context, documentID uuid.UUID) error {
	_, err := e.client.Insert(ctx, StampPDFArgs{DocumentID: documentID}, nil)
	return wrap("stamp_pdf", err)
}

func (e *Enqueuer) EnqueueRenderPages(ctx context.Context, documentID uuid.UUID) error {
	_, err := e.client.Insert(ctx, RenderPagesArgs{DocumentID: documentID}, nil)
	return wrap("render_pages", err)
}

func (e *Enqueuer) EnqueueSendEmail(ctx context.Context, documentID uuid.UUID, email *string) error {
	_, err := e.client.Insert(ctx, SendEmailArgs{DocumentID: documentID, Email: email}, nil)
	return wrap("send_email", err)
}

func (e *Enqueuer) EnqueueInvokeWebhooksFileUsage(ctx context.Context, fileUsageID int64) error {
	_, err := e.client.Insert(ctx, InvokeWebhooksFileUsageArgs{FileUsageID: fileUsageID}, nil)
	return wrap("invoke_webhooks_fileusage", err)
}

func (e *Enqueuer) EnqueueInvokeWebhooksFieldUsage(ctx context.Context, fieldUsageID int64) error {
	_, err := e.client.Insert(ctx, InvokeWebhooksFieldUsageArgs{FieldUsageID: fieldUsageID}, nil)
	return wrap("invoke_webhooks_fieldusage", err)
}

func (e *Enqueuer) EnqueueDeleteBlobs(ctx context.Context, blobNames []string) error {
	if len(blobNames) == 0 {
		return nil
	}
	_, err := e.client.Insert(ctx, DeleteBlobsArgs{BlobNames: blobNames}, nil)
	return wrap("delete_blobs", err)
}

func wrap(task string, err error) error {
	if err != nil {
		return fmt.Errorf("jobs: enqueueing %s: %w", task, err)
	}
	return nil
}
