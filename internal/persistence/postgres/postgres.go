// Package postgres stores versioned documents in PostgreSQL so several
// service processes can share one authoritative floor plan.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/workspace-planner/internal/persistence"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	key        TEXT PRIMARY KEY,
	version    BIGINT NOT NULL CHECK (version > 0),
	data       BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// DocumentStore implements persistence.DocumentRepository and persistence.Swapper.
type DocumentStore struct {
	pool *pgxpool.Pool
}

// Open connects to dsn and ensures the documents table exists.
func Open(ctx context.Context, dsn string) (*DocumentStore, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	poolCfg.MaxConns = 10
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return &DocumentStore{pool: pool}, nil
}

// Load implements persistence.DocumentRepository.
func (s *DocumentStore) Load(ctx context.Context, key string) (persistence.Record, error) {
	rec := persistence.Record{Key: key}
	err := s.pool.QueryRow(ctx, `SELECT version, data, updated_at FROM documents WHERE key = $1`, key).
		Scan(&rec.Version, &rec.Data, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return persistence.Record{}, persistence.ErrNotFound
	}
	if err != nil {
		return persistence.Record{}, fmt.Errorf("postgres: load %s: %w", key, err)
	}
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}

// Save implements persistence.DocumentRepository.
func (s *DocumentStore) Save(ctx context.Context, record persistence.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (key, version, data, updated_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET
			version = EXCLUDED.version,
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at`,
		record.Key, record.Version, record.Data, record.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("postgres: save %s: %w", record.Key, err)
	}
	return nil
}

// SaveIfNewer implements persistence.Swapper. The row lock taken by the
// upsert makes concurrent callers re-evaluate the version guard against the
// winner's row, so at most one of them writes a given version.
func (s *DocumentStore) SaveIfNewer(ctx context.Context, record persistence.Record) (persistence.Record, bool, error) {
	if err := record.Validate(); err != nil {
		return persistence.Record{}, false, err
	}

	var version int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO documents (key, version, data, updated_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET
			version = EXCLUDED.version,
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
		WHERE documents.version < EXCLUDED.version
		RETURNING version`,
		record.Key, record.Version, record.Data, record.UpdatedAt.UTC()).Scan(&version)
	switch {
	case err == nil:
		return record.Clone(), true, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return persistence.Record{}, false, fmt.Errorf("postgres: conditional save %s: %w", record.Key, err)
	}

	latest, err := s.Load(ctx, record.Key)
	if err != nil {
		return persistence.Record{}, false, err
	}
	return latest, false, nil
}

// Close implements persistence.DocumentRepository.
func (s *DocumentStore) Close() error {
	s.pool.Close()
	return nil
}
