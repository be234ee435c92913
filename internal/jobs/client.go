package jobs

import (
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/rendis/esigncore/internal/config"
	"github.com/rendis/esigncore/internal/port"
	"github.com/rendis/esigncore/internal/service/audit"
	"github.com/rendis/esigncore/internal/service/identity"
)

// Dependencies bundles everything the task workers need. Both cmd/api
// (to construct an Enqueuer) and cmd/worker (to run the pool) build one of
// these from the same wiring.
type Dependencies struct {
	Documents       port.DocumentRepository
	Files           port.FileRepository
	FileUsages      port.FileUsageRepository
	FieldUsages     port.FieldUsageRepository
	Fields          port.FieldRepository
	RenderedPages   port.RenderedPageRepository
	Users           port.UserRepository
	BusinessConfigs port.BusinessConfigRepository
	Storage         port.StorageAdapter
	Locator         port.FieldLocator
	Stamper         port.Stamper
	Concat          port.Concat
	PageRenderer    port.PageRenderer
	EmailProvider   port.EmailProvider
	WebhookSender   port.WebhookSender
	Identity        *identity.Service
	Audit           *audit.Service
	Email           config.EmailConfig
}

// NewWorkers registers one Worker per task kind (§4.6). The stamp_pdf and
// send_email workers close over a JobEnqueuer so they can chain the next
// task (render_pages, webhook dispatch) — wired in after the client exists,
// since the enqueuer wraps the very client these workers register with.
func NewWorkers(deps Dependencies, enqueuer port.JobEnqueuer) (*river.Workers, error) {
	workers := river.NewWorkers()

	if err := river.AddWorkerSafely(workers, &LocateFieldsWorker{
		FileUsages: deps.FileUsages,
		Storage:    deps.Storage,
		Locator:    deps.Locator,
	}); err != nil {
		return nil, err
	}
	if err := river.AddWorkerSafely(workers, &StampPDFWorker{
		Fields:      deps.Fields,
		FieldUsages: deps.FieldUsages,
		FileUsages:  deps.FileUsages,
		Files:       deps.Files,
		Storage:     deps.Storage,
		Stamper:     deps.Stamper,
		Concat:      deps.Concat,
		Audit:       deps.Audit,
		Jobs:        enqueuer,
	}); err != nil {
		return nil, err
	}
	if err := river.AddWorkerSafely(workers, &RenderPagesWorker{
		FileUsages:    deps.FileUsages,
		Files:         deps.Files,
		RenderedPages: deps.RenderedPages,
		Storage:       deps.Storage,
		Renderer:      deps.PageRenderer,
	}); err != nil {
		return nil, err
	}
	if err := river.AddWorkerSafely(workers, &SendEmailWorker{
		Fields:          deps.Fields,
		FileUsages:      deps.FileUsages,
		Users:           deps.Users,
		BusinessConfigs: deps.BusinessConfigs,
		Identity:        deps.Identity,
		Provider:        deps.EmailProvider,
		Jobs:            enqueuer,
		Email:           deps.Email,
	}); err != nil {
		return nil, err
	}
	if err := river.AddWorkerSafely(workers, &InvokeWebhooksFileUsageWorker{
		FileUsages:      deps.FileUsages,
		Documents:       deps.Documents,
		Users:           deps.Users,
		BusinessConfigs: deps.BusinessConfigs,
		Sender:          deps.WebhookSender,
	}); err != nil {
		return nil, err
	}
	if err := river.AddWorkerSafely(workers, &InvokeWebhooksFieldUsageWorker{
		FieldUsages:     deps.FieldUsages,
		Fields:          deps.Fields,
		Documents:       deps.Documents,
		Users:           deps.Users,
		BusinessConfigs: deps.BusinessConfigs,
		Sender:          deps.WebhookSender,
	}); err != nil {
		return nil, err
	}
	if err := river.AddWorkerSafely(workers, &DeleteBlobsWorker{
		Storage: deps.Storage,
	}); err != nil {
		return nil, err
	}

	return workers, nil
}

// NewClient builds the river client against pool, with workers and a
// single default queue sized by poolSize.
func NewClient(pool *pgxpool.Pool, workers *river.Workers, poolSize int) (*river.Client[pgx.Tx], error) {
	if poolSize <= 0 {
		poolSize = 10
	}
	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: poolSize},
		},
		Workers: workers,
	})
	if err != nil {
		return nil, fmt.Errorf("jobs: building river client: %w", err)
	}
	return client, nil
}
