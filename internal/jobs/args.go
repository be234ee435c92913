// Package jobs is C6: the durable, Postgres-backed job queue built on
// riverqueue/river. One Args/Worker pair per task named in SPEC §4.6.
package jobs

import (
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// taskTimeLimit is the hard per-task ceiling (§4.6): tasks exceeding it are
// terminated and considered failed. Set once at wiring time via
// SetTaskTimeLimit; kept as a package var so every Worker's Timeout method can
// read the configured value without threading it through every Args type.
var taskTimeLimit = 180 * time.Second

// SetTaskTimeLimit overrides the default hard time limit; called once at
// bootstrap from config.JobConfig.TaskTimeLimit.
func SetTaskTimeLimit(d time.Duration) {
	if d > 0 {
		taskTimeLimit = d
	}
}

// defaultMaxRetries is the default `max_retries` (§4.6); individual Args
// types override via InsertOpts when their retry policy differs.
var defaultMaxRetries = 5

// SetDefaultMaxRetries overrides the default retry ceiling; called once at
// bootstrap from config.JobConfig.DefaultMaxRetries.
func SetDefaultMaxRetries(n int) {
	if n > 0 {
		defaultMaxRetries = n
	}
}

// LocateFieldsArgs is the locate_fields task: parse form-field geometry and
// store it as a describe-fields FileUsage.
type LocateFieldsArgs struct {
	DocumentID uuid.UUID `json:"document_id"`
}

func (LocateFieldsArgs) Kind() string { return "locate_fields" }

func (LocateFieldsArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: defaultMaxRetries, Queue: river.QueueDefault}
}

// StampPDFArgs is the stamp_pdf task.
type StampPDFArgs struct {
	DocumentID uuid.UUID `json:"document_id"`
}

func (StampPDFArgs) Kind() string { return "stamp_pdf" }

func (StampPDFArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: defaultMaxRetries, Queue: river.QueueDefault}
}

// RenderPagesArgs is the render_pages task. Retries on any error (§4.6).
type RenderPagesArgs struct {
	DocumentID uuid.UUID `json:"document_id"`
}

func (RenderPagesArgs) Kind() string { return "render_pages" }

func (RenderPagesArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: defaultMaxRetries, Queue: river.QueueDefault}
}

// SendEmailArgs is the send_email task. Email nil means "every user holding
// a field on the document".
type SendEmailArgs struct {
	DocumentID uuid.UUID `json:"document_id"`
	Email      *string   `json:"email,omitempty"`
}

func (SendEmailArgs) Kind() string { return "send_email" }

func (SendEmailArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: defaultMaxRetries, Queue: river.QueueDefault}
}

// InvokeWebhooksFileUsageArgs is the invoke_webhooks_fileusage task.
// Retries only on a missing row, to tolerate the commit-before-enqueue
// race; see worker.Work.
type InvokeWebhooksFileUsageArgs struct {
	FileUsageID int64 `json:"file_usage_id"`
}

func (InvokeWebhooksFileUsageArgs) Kind() string { return "invoke_webhooks_fileusage" }

func (InvokeWebhooksFileUsageArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: defaultMaxRetries, Queue: river.QueueDefault}
}

// InvokeWebhooksFieldUsageArgs is the invoke_webhooks_fieldusage task.
// Retries on any error (§4.6).
type InvokeWebhooksFieldUsageArgs struct {
	FieldUsageID int64 `json:"field_usage_id"`
}

func (InvokeWebhooksFieldUsageArgs) Kind() string { return "invoke_webhooks_fieldusage" }

func (InvokeWebhooksFieldUsageArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: defaultMaxRetries, Queue: river.QueueDefault}
}

// DeleteBlobsArgs is the delete_blobs task: best-effort; missing blobs are
// logged and skipped.
type DeleteBlobsArgs struct {
	BlobNames []string `json:"blob_names"`
}

func (DeleteBlobsArgs) Kind() string { return "delete_blobs" }

func (DeleteBlobsArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: defaultMaxRetries, Queue: river.QueueDefault}
}
