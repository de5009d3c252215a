// Package memory provides an in-process document backend for tests and
// ephemeral runs.
package memory

import (
	"context"
	"sync"

	"github.com/example/workspace-planner/internal/persistence"
)

// Storage keeps records in a map guarded by a RWMutex. Every read and write
// copies the payload so callers never share buffers with the store.
type Storage struct {
	mu      sync.RWMutex
	records map[string]persistence.Record
}

// NewStorage returns an empty backend.
func NewStorage() *Storage {
	return &Storage{records: make(map[string]persistence.Record)}
}

// Load implements persistence.DocumentRepository.
func (s *Storage) Load(ctx context.Context, key string) (persistence.Record, error) {
	if err := ctx.Err(); err != nil {
		return persistence.Record{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok {
		return persistence.Record{}, persistence.ErrNotFound
	}
	return rec.Clone(), nil
}

// Save implements persistence.DocumentRepository.
func (s *Storage) Save(ctx context.Context, record persistence.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := record.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.Key] = record.Clone()
	return nil
}

// SaveIfNewer implements persistence.Swapper.
func (s *Storage) SaveIfNewer(ctx context.Context, record persistence.Record) (persistence.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return persistence.Record{}, false, err
	}
	if err := record.Validate(); err != nil {
		return persistence.Record{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.records[record.Key]; ok && current.Version >= record.Version {
		return current.Clone(), false, nil
	}
	s.records[record.Key] = record.Clone()
	return record.Clone(), true, nil
}

// Close implements persistence.DocumentRepository.
func (s *Storage) Close() error {
	return nil
}
