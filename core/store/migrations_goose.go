package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"ccf-policy/core/utils"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var gooseMigrationsFS embed.FS

const (
	gooseTable    = "goose_db_version"
	migrationsDir = "migrations"
)

// ApplyMigrations brings the schema to the latest embedded version.
func ApplyMigrations(ctx context.Context, db *sql.DB, logger *utils.Logger) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	if err := useDialect(ctx, db); err != nil {
		return err
	}
	logger.Printf("applying goose migrations")
	if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
		return err
	}
	logger.Printf("goose migrations applied")
	return nil
}

func useDialect(ctx context.Context, db *sql.DB) error {
	isPG, err := isPostgresDB(ctx, db)
	if err != nil {
		return err
	}
	dialect := "sqlite3"
	if isPG {
		dialect = "postgres"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	goose.SetBaseFS(gooseMigrationsFS)
	goose.SetLogger(goose.NopLogger())
	return nil
}

func tableExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	isPG, err := isPostgresDB(ctx, db)
	if err != nil {
		return false, err
	}
	query := `SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name=?`
	if isPG {
		query = `SELECT COUNT(1) FROM information_schema.tables WHERE table_schema='public' AND table_name=?`
	}
	var n int
	if err := db.QueryRowContext(ctx, query, name).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// isPostgresDB probes version(), which sqlite does not provide.
func isPostgresDB(ctx context.Context, db *sql.DB) (bool, error) {
	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return false, err
	}
	var version string
	if err := db.QueryRowContext(ctx, "SELECT version()").Scan(&version); err != nil {
		return false, nil
	}
	return true, nil
}
