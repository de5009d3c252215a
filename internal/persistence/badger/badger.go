// Package badger stores versioned documents in an embedded BadgerDB.
package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	dgbadger "github.com/dgraph-io/badger/v4"

	"github.com/example/workspace-planner/internal/codec"
	"github.com/example/workspace-planner/internal/persistence"
)

// Config controls how the database is opened.
type Config struct {
	// Path is the data directory. Ignored when InMemory is set.
	Path string
	// InMemory keeps everything in RAM, for tests.
	InMemory bool
	// SyncWrites fsyncs every commit.
	SyncWrites bool
	// Logger receives badger's internal logs. Nil silences them.
	Logger *slog.Logger
	// MaxConflictRetries bounds how often SaveIfNewer retries after a
	// transaction conflict with a concurrent writer.
	MaxConflictRetries int
}

// DefaultConfig returns a durable configuration rooted at path.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true, MaxConflictRetries: 5}
}

// InMemoryConfig returns a configuration for tests.
func InMemoryConfig() Config {
	return Config{InMemory: true, MaxConflictRetries: 5}
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// envelope is what is written under each key.
type envelope struct {
	Version   int64     `cbor:"1,keyasint"`
	Data      []byte    `cbor:"2,keyasint"`
	UpdatedAt time.Time `cbor:"3,keyasint"`
}

// DocumentStore implements persistence.DocumentRepository and persistence.Swapper.
type DocumentStore struct {
	db      *dgbadger.DB
	retries int
	codec   codec.Codec
}

// Open opens or creates the database described by cfg.
func Open(cfg Config) (*DocumentStore, error) {
	var opts dgbadger.Options
	if cfg.InMemory {
		opts = dgbadger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("badger: path is required for persistent storage")
		}
		opts = dgbadger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger.With("component", "badger")})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := dgbadger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open: %w", err)
	}
	retries := cfg.MaxConflictRetries
	if retries <= 0 {
		retries = 1
	}
	return &DocumentStore{db: db, retries: retries, codec: codec.CBOR{}}, nil
}

// Load implements persistence.DocumentRepository.
func (s *DocumentStore) Load(ctx context.Context, key string) (rec persistence.Record, err error) {
	if err := ctx.Err(); err != nil {
		return persistence.Record{}, err
	}
	err = s.db.View(func(txn *dgbadger.Txn) error {
		rec, err = s.get(txn, key)
		return err
	})
	return rec, err
}

// Save implements persistence.DocumentRepository.
func (s *DocumentStore) Save(ctx context.Context, record persistence.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := record.Validate(); err != nil {
		return err
	}
	return s.db.Update(func(txn *dgbadger.Txn) error {
		return s.put(txn, record)
	})
}

// SaveIfNewer implements persistence.Swapper. Badger's optimistic
// transactions detect a concurrent write to the same key; the loser re-reads
// and compares again.
func (s *DocumentStore) SaveIfNewer(ctx context.Context, record persistence.Record) (persistence.Record, bool, error) {
	if err := record.Validate(); err != nil {
		return persistence.Record{}, false, err
	}

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return persistence.Record{}, false, err
		}

		var (
			latest persistence.Record
			saved  bool
		)
		err := s.db.Update(func(txn *dgbadger.Txn) error {
			current, err := s.get(txn, record.Key)
			switch {
			case errors.Is(err, persistence.ErrNotFound):
			case err != nil:
				return err
			case current.Version >= record.Version:
				latest = current
				return nil
			}
			if err := s.put(txn, record); err != nil {
				return err
			}
			latest, saved = record.Clone(), true
			return nil
		})
		if errors.Is(err, dgbadger.ErrConflict) && attempt+1 < s.retries {
			continue
		}
		if err != nil {
			return persistence.Record{}, false, fmt.Errorf("badger: conditional save %s: %w", record.Key, err)
		}
		return latest, saved, nil
	}
}

// Close implements persistence.DocumentRepository.
func (s *DocumentStore) Close() error {
	return s.db.Close()
}

// RunGC reclaims space in value log files until nothing more can be
// rewritten.
func (s *DocumentStore) RunGC(discardRatio float64) error {
	for {
		err := s.db.RunValueLogGC(discardRatio)
		if errors.Is(err, dgbadger.ErrNoRewrite) || errors.Is(err, dgbadger.ErrRejected) || errors.Is(err, dgbadger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (s *DocumentStore) get(txn *dgbadger.Txn, key string) (persistence.Record, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, dgbadger.ErrKeyNotFound) {
		return persistence.Record{}, persistence.ErrNotFound
	}
	if err != nil {
		return persistence.Record{}, fmt.Errorf("badger: get %s: %w", key, err)
	}

	var env envelope
	err = item.Value(func(val []byte) error {
		return s.codec.Unmarshal(val, &env)
	})
	if err != nil {
		return persistence.Record{}, fmt.Errorf("badger: decode %s: %w", key, err)
	}
	return persistence.Record{Key: key, Version: env.Version, Data: env.Data, UpdatedAt: env.UpdatedAt}, nil
}

func (s *DocumentStore) put(txn *dgbadger.Txn, record persistence.Record) error {
	val, err := s.codec.Marshal(envelope{Version: record.Version, Data: record.Data, UpdatedAt: record.UpdatedAt.UTC()})
	if err != nil {
		return fmt.Errorf("badger: encode %s: %w", record.Key, err)
	}
	return txn.Set([]byte(record.Key), val)
}
