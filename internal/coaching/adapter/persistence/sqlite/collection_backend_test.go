package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"coach-portal/internal/coaching/adapter/persistence/backendtest"
	"coach-portal/internal/coaching/domain/model"
	"coach-portal/internal/coaching/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryBackend(t *testing.T) repository.CollectionBackend {
	t.Helper()
	b, err := NewBackend(":memory:", "collections")
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestSQLiteBackend_Contract(t *testing.T) {
	backendtest.Run(t, newMemoryBackend)
}

func TestSQLiteBackend_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.db")
	ctx := context.Background()

	b, err := NewBackend(path, "store_rows")
	require.NoError(t, err)
	require.NoError(t, b.EnsureSchema(ctx))
	require.NoError(t, b.Put(ctx, "athletes", "a1", model.Record{"id": "a1", "name": "Ana"}))
	require.NoError(t, b.Close())

	reopened, err := NewBackend(path, "store_rows")
	require.NoError(t, err)
	defer reopened.Close()
	require.NoError(t, reopened.EnsureSchema(ctx))

	got, err := reopened.Get(ctx, "athletes", "a1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", got["name"])
}
