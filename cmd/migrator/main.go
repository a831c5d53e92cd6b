package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gokatarajesh/quiz-bank/internal/config"
	"github.com/gokatarajesh/quiz-bank/internal/db"
)

func main() {
	command := flag.String("command", "up", "Migration command: up, down, or status")
	flag.Parse()

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load("configs/.env")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	var (
		conn    *sql.DB
		dialect string
	)
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		dialect = db.DialectSQLite
		conn, err = db.OpenSQLiteDB(ctx, cfg.SQLite.Path)
	case config.DriverPostgres:
		pg := cfg.Postgres
		dialect = db.DialectPostgres
		conn, err = db.OpenPostgresDB(ctx, db.PostgresConnString(pg.Host, pg.Port, pg.User, pg.Password, pg.Database, pg.SSLMode))
	default:
		log.Fatal().Str("driver", cfg.Store.Driver).Msg("STORE_DRIVER has no schema to migrate; use sqlite or postgres")
	}
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open database connection")
	}
	defer conn.Close()

	log.Info().Str("driver", cfg.Store.Driver).Str("command", *command).Msg("connected to database")

	switch *command {
	case "up":
		if err := db.Migrate(ctx, conn, dialect, log.Logger); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations up")
		}
		log.Info().Msg("migrations applied successfully")

	case "down":
		if err := db.Rollback(ctx, conn, dialect, log.Logger); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations down")
		}
		log.Info().Msg("migrations rolled back successfully")

	case "status":
		if err := db.Status(ctx, conn, dialect, log.Logger); err != nil {
			log.Fatal().Err(err).Msg("failed to get migration status")
		}

	default:
		log.Fatal().Str("command", *command).Msg("unknown command. Use: up, down, or status")
	}
}
