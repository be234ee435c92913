package port

import (
	"context"

	"github.com/google/uuid"
)

// JobEnqueuer is the narrow surface the services depend on to hand work to
// C6. It is implemented by internal/jobs against the river client so that
// internal/service never imports riverqueue/river directly.
type JobEnqueuer interface {
	EnqueueLocateFields(ctx context.Context, documentID uuid.UUID) error
	EnqueueStampPDF(ctx context.Context, documentID uuid.UUID) error
	EnqueueRenderPages(ctx context.Context, documentID uuid.UUID) error
	EnqueueSendEmail(ctx context.Context, documentID uuid.UUID, email *string) error
	EnqueueInvokeWebhooksFileUsage(ctx context.Context, fileUsageID int64) error
	EnqueueInvokeWebhooksFieldUsage(ctx context.Context, fieldUsageID int64) error
	EnqueueDeleteBlobs(ctx context.Context, blobNames []string) error
}
