package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/riverqueue/river"

	"github.com/rendis/esigncore/internal/port"
)

// DeleteBlobsWorker is delete_blobs (§4.6): best-effort cleanup of every
// blob a deleted document ever referenced. StorageAdapter.Delete already
// treats a missing object as success; any other per-blob failure is logged
// and skipped so one bad key never blocks the rest.
type DeleteBlobsWorker struct {
	river.WorkerDefaults[DeleteBlobsArgs]

	Storage port.StorageAdapter
}

func (w *DeleteBlobsWorker) Timeout(*river.Job[DeleteBlobsArgs]) time.Duration { return taskTimeLimit }

func (w *DeleteBlobsWorker) Work(ctx context.Context, job *river.Job[DeleteBlobsArgs]) error {
	for _, name := range job.Args.BlobNames {
		if err := w.Storage.Delete(ctx, name); err != nil {
			slog.ErrorContext(ctx, "delete_blobs: failed to delete blob, skipping",
				slog.String("blob", name), slog.String("error", err.Error()))
		}
	}
	return nil
}
