// Command worker runs the river task queue: field location, PDF stamping,
// page rendering, email delivery, webhook dispatch, and blob cleanup. It
// shares its wiring with cmd/api but never starts an HTTP listener.
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

	slog.InfoContext(ctx, "starting esigncore worker")
	if err := run(ctx, application); err != nil {
		slog.ErrorContext(ctx, "worker error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.InfoContext(ctx, "esigncore worker stopped")
}

func run(parent context.Context, application *app.App) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	if err := application.RiverClient.Start(ctx); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	slog.InfoContext(ctx, "received shutdown signal", slog.String("signal", sig.String()))

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	return application.RiverClient.Stop(stopCtx)
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
