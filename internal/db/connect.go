package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // driver: sqlite
)

// OpenSQLiteDB opens (creating if needed) a SQLite database file without migrating it.
func OpenSQLiteDB(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		path = "quizbank.db"
	}
	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows one writer; a single connection keeps writes serialized.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return conn, nil
}

// OpenSQLite opens a SQLite database and applies migrations.
func OpenSQLite(ctx context.Context, path string, logger zerolog.Logger) (*sql.DB, error) {
	conn, err := OpenSQLiteDB(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, conn, DialectSQLite, logger); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// OpenPostgresDB opens a database/sql handle through the pgx stdlib driver, as goose needs.
func OpenPostgresDB(ctx context.Context, connString string) (*sql.DB, error) {
	sqlDB, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return sqlDB, nil
}

// OpenPostgres applies migrations over a short-lived database/sql handle, then connects
// the pgx pool used for queries.
func OpenPostgres(ctx context.Context, connString string, maxConns int32, logger zerolog.Logger) (*pgxpool.Pool, error) {
	sqlDB, err := OpenPostgresDB(ctx, connString)
	if err != nil {
		return nil, err
	}
	defer sqlDB.Close()
	if err := Migrate(ctx, sqlDB, DialectPostgres, logger); err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, nil
}

// PostgresConnString builds a key/value connection string.
func PostgresConnString(host string, port int, user, password, database, sslMode string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, database, sslMode)
}
