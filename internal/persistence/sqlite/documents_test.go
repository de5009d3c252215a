package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/workspace-planner/internal/persistence"
	"github.com/example/workspace-planner/internal/persistence/persistencetest"
)

func openTestStore(t *testing.T) *DocumentStore {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "workspace.db")
	store, err := Open(context.Background(), dsn)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestDocumentStoreContract(t *testing.T) {
	persistencetest.RunDocumentRepositoryContract(t, func(t *testing.T) persistencetest.Backend {
		return openTestStore(t)
	})
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	applied, err := store.pool.Migrate(ctx)
	if err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("expected no pending migrations, got %v", applied)
	}

	var count int
	if err := store.pool.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	migrations, _ := loadMigrations()
	if count != len(migrations) {
		t.Fatalf("expected %d recorded migrations, got %d", len(migrations), count)
	}
}

func TestDocumentStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "workspace.db")

	first, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := first.Save(ctx, persistence.Record{Key: "floorplan/fp", Version: 7, Data: []byte("{}")}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	first.Close()

	second, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()

	got, err := second.Load(ctx, "floorplan/fp")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Version != 7 {
		t.Fatalf("expected version 7, got %d", got.Version)
	}
}
