package kv

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres keeps documents in the kv_documents table through a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// NewPostgres expects a pool over a migrated database, see db.OpenPostgres.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	var value string
	err := p.pool.QueryRow(ctx, `SELECT doc_value FROM kv_documents WHERE doc_key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	_, err := p.pool.Exec(ctx, `
		INSERT INTO kv_documents (doc_key, doc_value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (doc_key) DO UPDATE SET doc_value = EXCLUDED.doc_value, updated_at = EXCLUDED.updated_at`,
		key, value)
	return err
}

func (p *Postgres) Remove(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	_, err := p.pool.Exec(ctx, `DELETE FROM kv_documents WHERE doc_key = $1`, key)
	return err
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
