// Package persistencetest holds the behaviour every document backend must share.
package persistencetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/workspace-planner/internal/persistence"
)

// Backend is the full surface exercised by the contract.
type Backend interface {
	persistence.DocumentRepository
	persistence.Swapper
}

// Factory opens a fresh, empty backend for one subtest.
type Factory func(t *testing.T) Backend

var stamp = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

func record(key string, version int64, data string) persistence.Record {
	return persistence.Record{Key: key, Version: version, Data: []byte(data), UpdatedAt: stamp}
}

// RunDocumentRepositoryContract runs the shared backend checks.
func RunDocumentRepositoryContract(t *testing.T, open Factory) {
	t.Helper()

	t.Run("load of missing key reports not found", func(t *testing.T) {
		repo := open(t)
		_, err := repo.Load(context.Background(), "floorplan/missing")
		if !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("save then load round trips", func(t *testing.T) {
		ctx := context.Background()
		repo := open(t)
		want := record("floorplan/a", 3, `{"id":"a"}`)

		if err := repo.Save(ctx, want); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		got, err := repo.Load(ctx, want.Key)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if got.Version != 3 || string(got.Data) != `{"id":"a"}` || !got.UpdatedAt.Equal(stamp) {
			t.Fatalf("unexpected record %+v", got)
		}
	})

	t.Run("save overwrites regardless of version", func(t *testing.T) {
		ctx := context.Background()
		repo := open(t)
		mustSave(t, repo, record("k", 5, "five"))
		mustSave(t, repo, record("k", 2, "two"))

		got, err := repo.Load(ctx, "k")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if got.Version != 2 || string(got.Data) != "two" {
			t.Fatalf("expected overwrite, got %+v", got)
		}
	})

	t.Run("save rejects invalid records", func(t *testing.T) {
		repo := open(t)
		err := repo.Save(context.Background(), record("", 1, "x"))
		if !errors.Is(err, persistence.ErrInvalidRecord) {
			t.Fatalf("expected ErrInvalidRecord, got %v", err)
		}
	})

	t.Run("save if newer inserts when absent", func(t *testing.T) {
		repo := open(t)
		latest, saved, err := repo.SaveIfNewer(context.Background(), record("k", 1, "one"))
		if err != nil {
			t.Fatalf("SaveIfNewer failed: %v", err)
		}
		if !saved || latest.Version != 1 {
			t.Fatalf("expected insert, got saved=%v latest=%+v", saved, latest)
		}
	})

	t.Run("save if newer compares versions", func(t *testing.T) {
		ctx := context.Background()
		repo := open(t)
		mustSave(t, repo, record("k", 4, "four"))

		for _, stale := range []int64{3, 4} {
			latest, saved, err := repo.SaveIfNewer(ctx, record("k", stale, "stale"))
			if err != nil {
				t.Fatalf("SaveIfNewer failed: %v", err)
			}
			if saved {
				t.Fatalf("version %d should have been rejected", stale)
			}
			if latest.Version != 4 || string(latest.Data) != "four" {
				t.Fatalf("expected authoritative record, got %+v", latest)
			}
		}

		latest, saved, err := repo.SaveIfNewer(ctx, record("k", 5, "five"))
		if err != nil || !saved || latest.Version != 5 {
			t.Fatalf("expected version 5 to win, got saved=%v latest=%+v err=%v", saved, latest, err)
		}
	})

	t.Run("concurrent swaps admit one winner per version", func(t *testing.T) {
		ctx := context.Background()
		repo := open(t)
		mustSave(t, repo, record("k", 1, "base"))

		const writers = 8
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, saved, err := repo.SaveIfNewer(ctx, record("k", 2, "candidate"))
				if err != nil {
					t.Errorf("SaveIfNewer failed: %v", err)
					return
				}
				if saved {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		if wins != 1 {
			t.Fatalf("expected exactly one winner, got %d", wins)
		}
	})
}

func mustSave(t *testing.T, repo Backend, rec persistence.Record) {
	t.Helper()
	if err := repo.Save(context.Background(), rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
}
