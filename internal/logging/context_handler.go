package logging

import (
	"context"
	"log/slog"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	userIDKey    ctxKey = "user_id"
	jobNameKey   ctxKey = "job_name"
	jobIDKey     ctxKey = "job_id"
)

// WithRequestID returns a context carrying a request id that ContextHandler
// will attach to every record logged through it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// WithUserID returns a context carrying the authenticated caller's id.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// WithJob returns a context carrying the background task's name and job id.
func WithJob(ctx context.Context, name string, id int64) context.Context {
	ctx = context.WithValue(ctx, jobNameKey, name)
	return context.WithValue(ctx, jobIDKey, id)
}

// ContextHandler wraps a slog.Handler and injects request/task-scoped
// attributes pulled out of context.Context, so call sites never have to
// repeat slog.String("request_id", ...) by hand.
type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: h}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		r.AddAttrs(slog.String("request_id", v))
	}
	if v, ok := ctx.Value(userIDKey).(string); ok && v != "" {
		r.AddAttrs(slog.String("user_id", v))
	}
	if v, ok := ctx.Value(jobNameKey).(string); ok && v != "" {
		r.AddAttrs(slog.String("job_name", v))
	}
	if v, ok := ctx.Value(jobIDKey).(int64); ok && v != 0 {
		r.AddAttrs(slog.Int64("job_id", v))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name)}
}
