package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-bank/internal/config"
	"github.com/gokatarajesh/quiz-bank/internal/db"
	"github.com/gokatarajesh/quiz-bank/internal/kv"
)

// Backend is the opened key-value store plus the Redis client when one was dialed,
// so quiz sessions can share it.
type Backend struct {
	Store kv.Store
	Redis *redis.Client
}

// Close releases whatever connections the store holds.
func (b *Backend) Close() error {
	if c, ok := b.Store.(kv.Closer); ok {
		return c.Close()
	}
	return nil
}

// OpenStore connects the store selected by STORE_DRIVER.
func OpenStore(ctx context.Context, cfg *config.App, logger zerolog.Logger) (*Backend, error) {
	logger = logger.With().Str("driver", cfg.Store.Driver).Logger()

	switch cfg.Store.Driver {
	case config.DriverMemory:
		logger.Warn().Msg("memory store selected; the bank is lost on exit")
		return &Backend{Store: kv.NewMemory()}, nil

	case config.DriverFile:
		store, err := kv.NewFile(cfg.File.Dir)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("dir", cfg.File.Dir).Msg("file store ready")
		return &Backend{Store: store}, nil

	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.SQLite.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		conn, err := db.OpenSQLite(ctx, cfg.SQLite.Path, logger)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("path", cfg.SQLite.Path).Msg("sqlite store ready")
		return &Backend{Store: kv.NewSQLite(conn)}, nil

	case config.DriverPostgres:
		pg := cfg.Postgres
		connString := db.PostgresConnString(pg.Host, pg.Port, pg.User, pg.Password, pg.Database, pg.SSLMode)
		pool, err := db.OpenPostgres(ctx, connString, pg.MaxConns, logger)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("host", pg.Host).Str("database", pg.Database).Msg("postgres store ready")
		return &Backend{Store: kv.NewPostgres(pool)}, nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("redis store ready")
		return &Backend{Store: kv.NewRedis(client, cfg.Redis.KeyPrefix), Redis: client}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
