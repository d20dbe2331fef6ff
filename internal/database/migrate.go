package database

import (
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/macacolandia/dashboard-api/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate runs pending goose migrations. It opens a short-lived
// database/sql connection via lib/pq since goose does not speak pgx pools.
func Migrate(cfg *config.DatabaseConfig) error {
	return MigrateDSN(cfg.DSN())
}

// MigrateDSN runs the embedded migrations against an arbitrary DSN.
func MigrateDSN(dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
