package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/riverqueue/river"

	"github.com/rendis/esigncore/internal/entity"
	"github.com/rendis/esigncore/internal/port"
)

// LocateFieldsWorker is locate_fields (§4.6): fetches the source PDF and
// the external field-locator's page/field geometry, and records it as a
// single describe-fields FileUsage so GET /document/{id}/info stops
// returning 503. A locator failure still inserts an empty entry so callers
// stop polling instead of hanging forever on ErrFieldInfoNotReady.
type LocateFieldsWorker struct {
	river.WorkerDefaults[LocateFieldsArgs]

	FileUsages port.FileUsageRepository
	Storage    port.StorageAdapter
	Locator    port.FieldLocator
}

func (w *LocateFieldsWorker) Timeout(*river.Job[LocateFieldsArgs]) time.Duration { return taskTimeLimit }

func (w *LocateFieldsWorker) Work(ctx context.Context, job *river.Job[LocateFieldsArgs]) error {
	docID := job.Args.DocumentID

	fu, err := w.FileUsages.LatestByTypes(ctx, docID, entity.FileUsageUpdated, entity.FileUsageCreated)
	if err != nil {
		return err
	}
	pdf, err := w.Storage.Download(ctx, fu.FileID.String())
	if err != nil {
		return err
	}

	data := map[string]any{}
	result, err := w.Locator.LocateFields(ctx, pdf)
	if err != nil {
		slog.ErrorContext(ctx, "locate_fields: external locator failed, recording empty result",
			slog.String("document_id", docID.String()), slog.String("error", err.Error()))
	} else {
		pages := make([]map[string]any, len(result.Pages))
		for i, p := range result.Pages {
			pages[i] = map[string]any{"width": p.Width, "height": p.Height}
		}
		fields := make([]map[string]any, len(result.Fields))
		for i, f := range result.Fields {
			fields[i] = map[string]any{
				"name": f.Name,
				"page": f.Page,
				"rect": map[string]any{"x": f.Rect.X, "y": f.Rect.Y, "w": f.Rect.W, "h": f.Rect.H},
			}
		}
		data["pages"] = pages
		data["fields"] = fields
	}

	describe := entity.NewFileUsage(docID, nil, entity.FileUsageDescribeFields, data)
	return w.FileUsages.Create(ctx, describe)
}
