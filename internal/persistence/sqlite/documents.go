// Package sqlite stores versioned documents in a single SQLite table using
// the pure Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/workspace-planner/internal/persistence"
)

// DocumentStore implements persistence.DocumentRepository and persistence.Swapper.
type DocumentStore struct {
	pool *ConnectionPool
}

// Open connects to dsn, applies migrations and returns a ready store.
func Open(ctx context.Context, dsn string) (*DocumentStore, error) {
	pool, err := NewConnectionPool(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &DocumentStore{pool: pool}, nil
}

// Load implements persistence.DocumentRepository.
func (s *DocumentStore) Load(ctx context.Context, key string) (persistence.Record, error) {
	return loadRecord(ctx, s.pool.DB(), key)
}

// Save implements persistence.DocumentRepository.
func (s *DocumentStore) Save(ctx context.Context, record persistence.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}
	_, err := s.pool.DB().ExecContext(ctx, `
		INSERT INTO documents (key, version, data, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			version = excluded.version,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		record.Key, record.Version, record.Data, formatTime(record.UpdatedAt))
	if err != nil {
		return fmt.Errorf("sqlite: save %s: %w", record.Key, err)
	}
	return nil
}

// SaveIfNewer implements persistence.Swapper. The conditional upsert and the
// follow-up read share one transaction.
func (s *DocumentStore) SaveIfNewer(ctx context.Context, record persistence.Record) (latest persistence.Record, saved bool, err error) {
	if err := record.Validate(); err != nil {
		return persistence.Record{}, false, err
	}

	err = s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO documents (key, version, data, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT (key) DO UPDATE SET
				version = excluded.version,
				data = excluded.data,
				updated_at = excluded.updated_at
			WHERE documents.version < excluded.version`,
			record.Key, record.Version, record.Data, formatTime(record.UpdatedAt))
		if err != nil {
			return fmt.Errorf("sqlite: conditional save %s: %w", record.Key, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: conditional save %s: %w", record.Key, err)
		}
		if affected > 0 {
			latest, saved = record.Clone(), true
			return nil
		}
		latest, err = loadRecord(ctx, tx, record.Key)
		return err
	})
	if err != nil {
		return persistence.Record{}, false, err
	}
	return latest, saved, nil
}

// Close implements persistence.DocumentRepository.
func (s *DocumentStore) Close() error {
	return s.pool.Close()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadRecord(ctx context.Context, q queryer, key string) (persistence.Record, error) {
	var (
		rec     = persistence.Record{Key: key}
		updated string
	)
	err := q.QueryRowContext(ctx, `SELECT version, data, updated_at FROM documents WHERE key = ?`, key).
		Scan(&rec.Version, &rec.Data, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.Record{}, persistence.ErrNotFound
	}
	if err != nil {
		return persistence.Record{}, fmt.Errorf("sqlite: load %s: %w", key, err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return persistence.Record{}, fmt.Errorf("sqlite: parse updated_at for %s: %w", key, err)
	}
	return rec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
