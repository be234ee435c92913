package jobs

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dslipak/pdf"
	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/rendis/esigncore/internal/entity"
	"github.com/rendis/esigncore/internal/port"
)

// RenderPagesWorker is render_pages (§4.6): rasterizes every page of the
// latest stamped PDF through the external page-render service and caches
// each page as a File + RenderedPage row. Retries on any error.
type RenderPagesWorker struct {
	river.WorkerDefaults[RenderPagesArgs]

	FileUsages    port.FileUsageRepository
	Files         port.FileRepository
	RenderedPages port.RenderedPageRepository
	Storage       port.StorageAdapter
	Renderer      port.PageRenderer
}

func (w *RenderPagesWorker) Timeout(*river.Job[RenderPagesArgs]) time.Duration { return taskTimeLimit }

func (w *RenderPagesWorker) Work(ctx context.Context, job *river.Job[RenderPagesArgs]) error {
	docID := job.Args.DocumentID

	fu, err := w.FileUsages.LatestByTypes(ctx, docID, entity.FileUsageEndstamp)
	if err != nil {
		return err
	}
	stamped, err := w.Storage.Download(ctx, fu.FileID.String())
	if err != nil {
		return err
	}

	wantPages := localPageCount(stamped)

	rendered, err := w.Renderer.RenderPages(ctx, stamped)
	if err != nil {
		return fmt.Errorf("render_pages: calling page render service: %w", err)
	}
	if wantPages > 0 && len(rendered) != wantPages {
		slog.WarnContext(ctx, "render_pages: response page count mismatch",
			slog.String("document_id", docID.String()),
			slog.Int("want", wantPages), slog.Int("got", len(rendered)))
	}

	for _, p := range rendered {
		fileID := uuid.New()
		if err := w.Storage.Upload(ctx, fileID.String(), "image/png", bytes.NewReader(p.PNG), int64(len(p.PNG))); err != nil {
			return fmt.Errorf("render_pages: uploading page %d: %w", p.Page, err)
		}
		file := &entity.File{ID: fileID, Filename: fileID.String(), CreatedAt: time.Now().UTC()}
		if err := w.Files.Create(ctx, file); err != nil {
			return fmt.Errorf("render_pages: creating file row for page %d: %w", p.Page, err)
		}
		rp := entity.NewRenderedPage(fileID, docID, p.Page)
		if err := w.RenderedPages.Create(ctx, rp); err != nil {
			return fmt.Errorf("render_pages: recording rendered page %d: %w", p.Page, err)
		}
	}
	return nil
}

// localPageCount opens the stamped PDF with a pure-Go reader purely to
// learn its page count, so the render response can be sanity-checked
// without trusting the external service's count alone. Returns 0 (no
// check performed) if the PDF can't be parsed locally.
func localPageCount(data []byte) int {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0
	}
	return r.NumPage()
}
