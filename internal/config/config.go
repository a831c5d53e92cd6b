package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Store drivers understood by the application.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"quiz-bank"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Store    Store
	File     File
	SQLite   SQLite
	Postgres Postgres
	Redis    Redis
	Quiz     Quiz
	CORS     CORS
}

// Store selects where the question bank document lives.
type Store struct {
	Driver string `env:"STORE_DRIVER" envDefault:"file"`
	Key    string `env:"STORE_KEY" envDefault:"mos-test-questions"`
}

// File configures the directory-backed store.
type File struct {
	Dir string `env:"FILE_STORE_DIR" envDefault:"./data"`
}

// SQLite configures the embedded database store.
type SQLite struct {
	Path string `env:"SQLITE_PATH" envDefault:"./data/quizbank.db"`
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST" envDefault:"localhost"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER" envDefault:"postgres"`
	Password string `env:"PG_PASSWORD" envDefault:"postgres"`
	Database string `env:"PG_DATABASE" envDefault:"quizbank"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
	MaxConns int32  `env:"PG_MAX_CONNS" envDefault:"10"`
}

// Redis holds cache + store configuration.
type Redis struct {
	Addr      string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	DB        int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize  int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
	KeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"quizbank:"`
}

// Quiz governs generated tests.
type Quiz struct {
	MaxQuestions int           `env:"QUIZ_MAX_QUESTIONS" envDefault:"60"`
	SessionTTL   time.Duration `env:"QUIZ_SESSION_TTL" envDefault:"2h"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	return load(env.Options{RequiredIfNoDef: true})
}

func load(opts env.Options) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings no component can work with.
func (c *App) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverFile, DriverSQLite, DriverPostgres, DriverRedis:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Store.Key == "" {
		return fmt.Errorf("STORE_KEY must not be empty")
	}
	if c.Quiz.MaxQuestions <= 0 {
		return fmt.Errorf("QUIZ_MAX_QUESTIONS must be positive, got %d", c.Quiz.MaxQuestions)
	}
	return nil
}
