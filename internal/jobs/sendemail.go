package jobs

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/rendis/esigncore/internal/config"
	"github.com/rendis/esigncore/internal/entity"
	"github.com/rendis/esigncore/internal/port"
	"github.com/rendis/esigncore/internal/service/identity"
)

// SendEmailWorker is send_email (§4.6): resolves one recipient or every
// user with a field on the document, mints an AccessURI per recipient,
// substitutes `{{params}}` in the configured template body, and delivers
// through the configured provider. Skips delivery (and AccessURI minting)
// entirely when no provider is configured.
type SendEmailWorker struct {
	river.WorkerDefaults[SendEmailArgs]

	Fields          port.FieldRepository
	FileUsages      port.FileUsageRepository
	Users           port.UserRepository
	BusinessConfigs port.BusinessConfigRepository
	Identity        *identity.Service
	Provider        port.EmailProvider
	Jobs            port.JobEnqueuer
	Email           config.EmailConfig
}

func (w *SendEmailWorker) Timeout(*river.Job[SendEmailArgs]) time.Duration { return taskTimeLimit }

func (w *SendEmailWorker) Work(ctx context.Context, job *river.Job[SendEmailArgs]) error {
	docID := job.Args.DocumentID

	fields, err := w.Fields.ListByDocument(ctx, docID)
	if err != nil {
		return err
	}

	recipients := make(map[string]uuid.UUID)
	var businessID uuid.UUID
	for _, f := range fields {
		if f.UserID == nil {
			continue
		}
		u, err := w.Users.FindByID(ctx, *f.UserID)
		if err != nil {
			continue
		}
		businessID = u.BusinessID
		if job.Args.Email == nil || strings.EqualFold(u.Username, *job.Args.Email) {
			recipients[u.Username] = u.ID
		}
	}
	if len(recipients) == 0 {
		slog.WarnContext(ctx, "send_email: no matching recipient on document",
			slog.String("document_id", docID.String()))
		return nil
	}

	tmpl := w.template(ctx, businessID)
	if !w.Email.Configured() {
		slog.ErrorContext(ctx, "send_email: no email provider configured, skipping delivery",
			slog.String("document_id", docID.String()))
		return nil
	}

	for email, userID := range recipients {
		if err := w.sendOne(ctx, docID, businessID, email, userID, tmpl); err != nil {
			return err
		}
	}
	return nil
}

func (w *SendEmailWorker) sendOne(ctx context.Context, docID, businessID uuid.UUID, email string, userID uuid.UUID, tmpl emailTemplate) error {
	access, err := w.Identity.MintAccessURI(ctx, userID, docID)
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("auth", access.URI)
	params.Set("doc", docID.String())
	body := strings.ReplaceAll(tmpl.Body, "{{params}}", params.Encode())

	msg := port.EmailMessage{To: strings.TrimSpace(email), Subject: tmpl.Subject, Body: body}
	if err := w.Provider.Send(ctx, w.Email.MailgunDomain, w.Email.MailgunAPIKey, msg); err != nil {
		return err
	}

	usage := entity.NewFileUsage(docID, nil, entity.FileUsageReminderEmailSent, map[string]any{
		"sender": tmpl.Sender,
		"target": email,
	})
	if err := w.FileUsages.Create(ctx, usage); err != nil {
		return err
	}
	return w.Jobs.EnqueueInvokeWebhooksFileUsage(ctx, usage.ID)
}

// emailTemplate is the resolved {subject, body, sender, reply-to} bundle, a
// business's email-template BusinessConfig overriding the process default.
type emailTemplate struct {
	Subject string
	Body    string
	Sender  string
	ReplyTo string
}

func (w *SendEmailWorker) template(ctx context.Context, businessID uuid.UUID) emailTemplate {
	tmpl := emailTemplate{
		Subject: w.Email.DefaultSubject,
		Body:    w.Email.DefaultBody,
		Sender:  w.Email.Sender,
		ReplyTo: w.Email.ReplyTo,
	}

	rows, err := w.BusinessConfigs.FindByBusinessAndKey(ctx, businessID, entity.BusinessConfigKeyEmailTemplate)
	if err != nil || len(rows) == 0 {
		return tmpl
	}
	values := rows[0].Values
	if v, ok := values["subject"].(string); ok && v != "" {
		tmpl.Subject = v
	}
	if v, ok := values["body"].(string); ok && v != "" {
		tmpl.Body = v
	}
	if v, ok := values["sender"].(string); ok && v != "" {
		tmpl.Sender = v
	}
	if v, ok := values["reply-to"].(string); ok && v != "" {
		tmpl.ReplyTo = v
	}
	return tmpl
}
