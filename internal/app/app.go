// Package app wires every adapter, repository, and service together without
// relying on a DI generator: cmd/api and cmd/worker both call Build and pick
// the pieces they run.
package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"

	"github.com/rendis/esigncore/internal/adapters/secondary/email/mailgun"
	"github.com/rendis/esigncore/internal/adapters/secondary/external/auditrenderer"
	"github.com/rendis/esigncore/internal/adapters/secondary/external/concat"
	"github.com/rendis/esigncore/internal/adapters/secondary/external/fieldextractor"
	"github.com/rendis/esigncore/internal/adapters/secondary/external/fieldlocator"
	"github.com/rendis/esigncore/internal/adapters/secondary/external/pagerenderer"
	"github.com/rendis/esigncore/internal/adapters/secondary/external/stamper"
	"github.com/rendis/esigncore/internal/adapters/secondary/storage/s3"
	"github.com/rendis/esigncore/internal/adapters/secondary/webhook"
	"github.com/rendis/esigncore/internal/config"
	httpserver "github.com/rendis/esigncore/internal/http"
	"github.com/rendis/esigncore/internal/http/controller"
	"github.com/rendis/esigncore/internal/jobs"
	"github.com/rendis/esigncore/internal/port"
	"github.com/rendis/esigncore/internal/repo/postgres/accessuri"
	"github.com/rendis/esigncore/internal/repo/postgres/business"
	"github.com/rendis/esigncore/internal/repo/postgres/businessconfig"
	docrepo "github.com/rendis/esigncore/internal/repo/postgres/document"
	"github.com/rendis/esigncore/internal/repo/postgres/field"
	"github.com/rendis/esigncore/internal/repo/postgres/fieldusage"
	"github.com/rendis/esigncore/internal/repo/postgres/file"
	"github.com/rendis/esigncore/internal/repo/postgres/fileusage"
	"github.com/rendis/esigncore/internal/repo/postgres/renderedpage"
	"github.com/rendis/esigncore/internal/repo/postgres/user"
	"github.com/rendis/esigncore/internal/service/audit"
	docsvc "github.com/rendis/esigncore/internal/service/document"
	"github.com/rendis/esigncore/internal/service/fill"
	"github.com/rendis/esigncore/internal/service/identity"
)

// App bundles every wired component shared by cmd/api and cmd/worker.
type App struct {
	Config *config.Config
	Pool   *pgxpool.Pool
	HTTP   *httpserver.Server
	// RiverClient is insert-only from cmd/api (no workers started); cmd/worker
	// calls Start on it to begin processing.
	RiverClient *river.Client[pgx.Tx]
}

// enqueuerRef forwards port.JobEnqueuer calls to a jobs.Enqueuer installed
// right after the river.Client is built. Workers need an enqueuer to chain
// the next task (stamp_pdf -> render_pages); the client needs the finished
// Workers set to exist first. Routing every call through this pointer,
// fixed up once after river.NewClient returns, breaks the cycle without
// changing the jobs package's API.
type enqueuerRef struct {
	inner port.JobEnqueuer
}

func (e *enqueuerRef) EnqueueLocateFields(ctx context.Context, documentID uuid.UUID) error {
	return e.inner.EnqueueLocateFields(ctx, documentID)
}
func (e *enqueuerRef) EnqueueStampPDF(ctx context.Context, documentID uuid.UUID) error {
	return e.inner.EnqueueStampPDF(ctx, documentID)
}
func (e *enqueuerRef) EnqueueRenderPages(ctx context.Context, documentID uuid.UUID) error {
	return e.inner.EnqueueRenderPages(ctx, documentID)
}
func (e *enqueuerRef) EnqueueSendEmail(ctx context.Context, documentID uuid.UUID, email *string) error {
	return e.inner.EnqueueSendEmail(ctx, documentID, email)
}
func (e *enqueuerRef) EnqueueInvokeWebhooksFileUsage(ctx context.Context, fileUsageID int64) error {
	return e.inner.EnqueueInvokeWebhooksFileUsage(ctx, fileUsageID)
}
func (e *enqueuerRef) EnqueueInvokeWebhooksFieldUsage(ctx context.Context, fieldUsageID int64) error {
	return e.inner.EnqueueInvokeWebhooksFieldUsage(ctx, fieldUsageID)
}
func (e *enqueuerRef) EnqueueDeleteBlobs(ctx context.Context, blobNames []string) error {
	return e.inner.EnqueueDeleteBlobs(ctx, blobNames)
}

var _ port.JobEnqueuer = (*enqueuerRef)(nil)

// Build constructs every repository, adapter, and service from cfg against
// an already-open pool, then assembles the HTTP server and the river client
// (with every worker registered, per §4.6). cmd/api uses App.HTTP; cmd/worker
// additionally calls App.RiverClient.Start to process jobs.
func Build(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (*App, error) {
	businesses := business.New(pool)
	businessConfigs := businessconfig.New(pool)
	users := user.New(pool)
	documents := docrepo.New(pool)
	fields := field.New(pool)
	files := file.New(pool)
	fileUsages := fileusage.New(pool)
	fieldUsages := fieldusage.New(pool)
	accessURIs := accessuri.New(pool)
	renderedPages := renderedpage.New(pool)

	storageAdapter, err := s3.New(ctx, s3.Config{
		Bucket:       cfg.Storage.Bucket,
		Region:       cfg.Storage.Region,
		Endpoint:     cfg.Storage.Endpoint,
		UsePathStyle: cfg.Storage.UsePathStyle,
		SignedURLTTL: cfg.Storage.SignedURLTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("app: building storage adapter: %w", err)
	}

	extractor := fieldextractor.New(cfg.External.FieldExtractorURL, cfg.External.Timeout)
	locator := fieldlocator.New(cfg.External.FieldLocatorURL, cfg.External.Timeout)
	stamp := stamper.New(cfg.External.StamperURL, cfg.External.Timeout)
	auditRenderer := auditrenderer.New(cfg.External.AuditRendererURL, cfg.External.Timeout)
	concatenator := concat.New(cfg.External.ConcatURL, cfg.External.Timeout)
	pageRenderer := pagerenderer.New(cfg.External.PageRendererURL, cfg.External.Timeout)
	emailProvider := mailgun.New(cfg.External.Timeout)
	webhookSender := webhook.New(cfg.External.Timeout)

	identitySvc := identity.New(users, businesses, accessURIs, fields, identity.Config{
		JWTSecret:       []byte(cfg.Auth.JWTSecret),
		DefaultTokenTTL: cfg.Auth.DefaultTokenTTL,
		BcryptCost:      cfg.Auth.BcryptCost,
		AccessURIBytes:  cfg.Auth.AccessURIBytes,
	})
	auditSvc := audit.New(fileUsages, fieldUsages, auditRenderer)

	ref := &enqueuerRef{}

	documentSvc := docsvc.New(documents, files, fileUsages, fieldUsages, fields, renderedPages, users, storageAdapter, extractor, ref, cfg.Storage.MaxUploadSize)
	fillSvc := fill.New(fields, fieldUsages, fileUsages, files, storageAdapter, ref, nil)

	jobs.SetTaskTimeLimit(cfg.Job.TaskTimeLimit)
	jobs.SetDefaultMaxRetries(cfg.Job.DefaultMaxRetries)

	workers, err := jobs.NewWorkers(jobs.Dependencies{
		Documents:       documents,
		Files:           files,
		FileUsages:      fileUsages,
		FieldUsages:     fieldUsages,
		Fields:          fields,
		RenderedPages:   renderedPages,
		Users:           users,
		BusinessConfigs: businessConfigs,
		Storage:         storageAdapter,
		Locator:         locator,
		Stamper:         stamp,
		Concat:          concatenator,
		PageRenderer:    pageRenderer,
		EmailProvider:   emailProvider,
		WebhookSender:   webhookSender,
		Identity:        identitySvc,
		Audit:           auditSvc,
		Email:           cfg.Email,
	}, ref)
	if err != nil {
		return nil, fmt.Errorf("app: registering workers: %w", err)
	}

	riverClient, err := jobs.NewClient(pool, workers, cfg.Job.WorkerPoolSize)
	if err != nil {
		return nil, fmt.Errorf("app: building river client: %w", err)
	}
	ref.inner = jobs.NewEnqueuer(riverClient)

	authController := controller.NewAuthController(identitySvc, users, fieldUsages, documents)
	documentController := controller.NewDocumentController(documentSvc, identitySvc, auditSvc, fillSvc, fields, fileUsages, users, documents, ref, documents)
	fieldController := controller.NewFieldController(fillSvc)

	httpSrv := httpserver.New(cfg, identitySvc, authController, documentController, fieldController)

	return &App{
		Config:      cfg,
		Pool:        pool,
		HTTP:        httpSrv,
		RiverClient: riverClient,
	}, nil
}
