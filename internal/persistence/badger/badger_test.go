package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/workspace-planner/internal/persistence"
	"github.com/example/workspace-planner/internal/persistence/persistencetest"
)

func TestDocumentStoreContract(t *testing.T) {
	persistencetest.RunDocumentRepositoryContract(t, func(t *testing.T) persistencetest.Backend {
		store, err := Open(InMemoryConfig())
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		return store
	})
}

func TestDocumentStorePersistsToDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := Open(DefaultConfig(dir))
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, persistence.Record{Key: "floorplan/fp", Version: 4, Data: []byte("plan")}))
	require.NoError(t, store.Close())

	reopened, err := Open(DefaultConfig(dir))
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(ctx, "floorplan/fp")
	require.NoError(t, err)
	require.Equal(t, int64(4), got.Version)
	require.Equal(t, "plan", string(got.Data))
	require.NoError(t, reopened.RunGC(0.5))
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	require.Error(t, err)
}
