// Command api serves the HTTP surface: document and field endpoints, auth,
// and the health/ready probes. Background task processing lives in
// cmd/worker instead, so the two scale independently.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rendis/esigncore/internal/app"
	"github.com/rendis/esigncore/internal/config"
	"github.com/rendis/esigncore/internal/logging"
	"github.com/rendis/esigncore/internal/migrations"
)

func main() {
	handler := logging.NewContextHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
	)
	slog.SetDefault(slog.New(handler))

	ctx := context.Background()
	cfg := config.MustLoad()

	if err := migrations.Run(cfg.Database.DSN); err != nil {
		slog.ErrorContext(ctx, "failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	pool, err := newPool(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to open database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	application, err := app.Build(ctx, cfg, pool)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.InfoContext(ctx, "starting esigncore api")
	if err := run(ctx, application); err != nil {
		slog.ErrorContext(ctx, "application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.InfoContext(ctx, "esigncore api stopped")
}

func run(parent context.Context, application *app.App) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := application.HTTP.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		slog.InfoContext(ctx, "received shutdown signal", slog.String("signal", sig.String()))
		cancel()
		return nil
	case err := <-errChan:
		return err
	}
}

func newPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.Database.MaxOpenConns > 0 {
		poolCfg.MaxConns = cfg.Database.MaxOpenConns
	}
	if cfg.Database.MaxIdleConns > 0 {
		poolCfg.MinConns = cfg.Database.MaxIdleConns
	}
	poolCfg.HealthCheckPeriod = time.Minute

	return pgxpool.NewWithConfig(ctx, poolCfg)
}
