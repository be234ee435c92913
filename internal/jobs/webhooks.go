package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/rendis/esigncore/internal/entity"
	"github.com/rendis/esigncore/internal/port"
)

// businessIDForDocument resolves the Business that owns a document, via
// its owner User. Every webhook task needs this to find the business's
// subscriber URLs.
func businessIDForDocument(ctx context.Context, documents port.DocumentRepository, users port.UserRepository, documentID uuid.UUID) (uuid.UUID, error) {
	doc, err := documents.FindByID(ctx, documentID)
	if err != nil {
		return uuid.Nil, err
	}
	owner, err := users.FindByID(ctx, doc.OwnerUserID)
	if err != nil {
		return uuid.Nil, err
	}
	return owner.BusinessID, nil
}

// dispatchWebhooks posts payload to every `webhook` BusinessConfig row for
// businessID. A single subscriber's failure never aborts the others; the
// sender itself already logs and swallows per-URL errors.
func dispatchWebhooks(ctx context.Context, configs port.BusinessConfigRepository, sender port.WebhookSender, businessID uuid.UUID, payload []byte) error {
	rows, err := configs.FindByBusinessAndKey(ctx, businessID, entity.BusinessConfigKeyWebhook)
	if err != nil {
		return fmt.Errorf("webhooks: listing subscribers: %w", err)
	}
	for _, row := range rows {
		url, ok := row.Values["url"].(string)
		if !ok || url == "" {
			continue
		}
		if err := sender.Send(ctx, url, payload); err != nil {
			slog.ErrorContext(ctx, "webhooks: delivery error", slog.String("url", url), slog.String("error", err.Error()))
		}
	}
	return nil
}

// InvokeWebhooksFileUsageWorker is invoke_webhooks_fileusage (§4.6). Retries
// only on a missing row, to tolerate the commit-before-enqueue race: any
// other error is logged by dispatchWebhooks and swallowed per-subscriber.
type InvokeWebhooksFileUsageWorker struct {
	river.WorkerDefaults[InvokeWebhooksFileUsageArgs]

	FileUsages      port.FileUsageRepository
	Documents       port.DocumentRepository
	Users           port.UserRepository
	BusinessConfigs port.BusinessConfigRepository
	Sender          port.WebhookSender
}

func (w *InvokeWebhooksFileUsageWorker) Timeout(*river.Job[InvokeWebhooksFileUsageArgs]) time.Duration {
	return taskTimeLimit
}

func (w *InvokeWebhooksFileUsageWorker) Work(ctx context.Context, job *river.Job[InvokeWebhooksFileUsageArgs]) error {
	usage, err := w.FileUsages.FindByID(ctx, job.Args.FileUsageID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return err
		}
		return river.JobCancel(err)
	}
	businessID, err := businessIDForDocument(ctx, w.Documents, w.Users, usage.DocumentID)
	if err != nil {
		return river.JobCancel(err)
	}

	payload, err := json.Marshal(map[string]any{
		"doc_id":     usage.DocumentID,
		"type":       "document",
		"usage_type": usage.Type,
		"timestamp":  usage.Timestamp,
		"data":       usage.Data,
	})
	if err != nil {
		return river.JobCancel(fmt.Errorf("invoke_webhooks_fileusage: encoding payload: %w", err))
	}
	if err := dispatchWebhooks(ctx, w.BusinessConfigs, w.Sender, businessID, payload); err != nil {
		return river.JobCancel(err)
	}
	return nil
}

// InvokeWebhooksFieldUsageWorker is invoke_webhooks_fieldusage (§4.6).
// Retries on any error.
type InvokeWebhooksFieldUsageWorker struct {
	river.WorkerDefaults[InvokeWebhooksFieldUsageArgs]

	FieldUsages     port.FieldUsageRepository
	Fields          port.FieldRepository
	Documents       port.DocumentRepository
	Users           port.UserRepository
	BusinessConfigs port.BusinessConfigRepository
	Sender          port.WebhookSender
}

func (w *InvokeWebhooksFieldUsageWorker) Timeout(*river.Job[InvokeWebhooksFieldUsageArgs]) time.Duration {
	return taskTimeLimit
}

func (w *InvokeWebhooksFieldUsageWorker) Work(ctx context.Context, job *river.Job[InvokeWebhooksFieldUsageArgs]) error {
	usage, err := w.FieldUsages.FindByID(ctx, job.Args.FieldUsageID)
	if err != nil {
		return fmt.Errorf("invoke_webhooks_fieldusage: loading usage: %w", err)
	}
	field, err := w.Fields.FindByID(ctx, usage.FieldID)
	if err != nil {
		return fmt.Errorf("invoke_webhooks_fieldusage: loading field: %w", err)
	}
	businessID, err := businessIDForDocument(ctx, w.Documents, w.Users, field.DocumentID)
	if err != nil {
		return fmt.Errorf("invoke_webhooks_fieldusage: resolving business: %w", err)
	}

	payload, err := json.Marshal(map[string]any{
		"doc_id":     field.DocumentID,
		"field_id":   field.ID,
		"user_id":    field.UserID, // nil for dependent fields
		"type":       "field",
		"usage_type": usage.Type,
		"timestamp":  usage.Timestamp,
		"data":       usage.Data,
	})
	if err != nil {
		return fmt.Errorf("invoke_webhooks_fieldusage: encoding payload: %w", err)
	}
	return dispatchWebhooks(ctx, w.BusinessConfigs, w.Sender, businessID, payload)
}
