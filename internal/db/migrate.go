package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

// Goose dialect names for the supported databases.
const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "postgres"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies every pending migration embedded in the binary.
func Migrate(ctx context.Context, db *sql.DB, dialect string, logger zerolog.Logger) error {
	if err := configure(dialect, logger); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Rollback reverts the most recent migration.
func Rollback(ctx context.Context, db *sql.DB, dialect string, logger zerolog.Logger) error {
	if err := configure(dialect, logger); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Status logs the applied state of every migration.
func Status(ctx context.Context, db *sql.DB, dialect string, logger zerolog.Logger) error {
	if err := configure(dialect, logger); err != nil {
		return err
	}
	return goose.StatusContext(ctx, db, migrationsDir)
}

func configure(dialect string, logger zerolog.Logger) error {
	goose.SetBaseFS(migrations)
	goose.SetTableName("goose_db_version")
	goose.SetLogger(gooseLogger{logger: logger.With().Str("component", "migrations").Logger()})
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set dialect %q: %w", dialect, err)
	}
	return nil
}

type gooseLogger struct {
	logger zerolog.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Fatal().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
