// Package migrations embeds and applies the schema migrations.
package migrations

import (
	"embed"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

// Run applies all pending migrations against dsn, a standard
// postgres://... connection string (the same one handed to pgxpool).
func Run(dsn string) error {
	src, err := iofs.New(sqlFiles, "sql")
	if err != nil {
		return fmt.Errorf("loading embedded migrations: %w", err)
	}

	migrateURL := dsn
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(migrateURL, scheme) {
			migrateURL = "pgx5://" + strings.TrimPrefix(migrateURL, scheme)
			break
		}
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}

	v, dirty, _ := m.Version()
	if dirty {
		return fmt.Errorf("migration version %d is dirty — manual intervention required", v)
	}

	fmt.Printf("migrations applied successfully (version: %d)\n", v)
	return nil
}
