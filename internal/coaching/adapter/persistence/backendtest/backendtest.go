// Package backendtest holds the behaviour every CollectionBackend must share. Each
// backend's tests call Run with a constructor for a fresh, empty backend.
package backendtest

import (
	"context"
	"testing"

	"coach-portal/internal/coaching/domain/model"
	"coach-portal/internal/coaching/domain/repository"
	apperrors "coach-portal/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises a backend through the CollectionBackend contract.
func Run(t *testing.T, newBackend func(t *testing.T) repository.CollectionBackend) {
	t.Helper()

	t.Run("EnsureSchemaIsIdempotent", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		require.NoError(t, b.EnsureSchema(ctx))
		require.NoError(t, b.EnsureSchema(ctx))
	})

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		b := ready(t, newBackend)
		ctx := context.Background()
		rec := model.Record{
			"id":     "r1",
			"name":   "Ana",
			"weight": 61.5,
			"tags":   []interface{}{"runner", "u23"},
			"nested": map[string]interface{}{"x": float64(1)},
		}
		require.NoError(t, b.Put(ctx, "athletes", "r1", rec))

		got, err := b.Get(ctx, "athletes", "r1")
		require.NoError(t, err)
		assert.Equal(t, rec, got)
	})

	t.Run("GetMissingIsNotFound", func(t *testing.T) {
		b := ready(t, newBackend)
		_, err := b.Get(context.Background(), "athletes", "nope")
		assert.ErrorIs(t, err, apperrors.ErrRecordNotFound)
	})

	t.Run("PutReplaces", func(t *testing.T) {
		b := ready(t, newBackend)
		ctx := context.Background()
		require.NoError(t, b.Put(ctx, "goals", "g1", model.Record{"id": "g1", "a": "one", "b": "two"}))
		require.NoError(t, b.Put(ctx, "goals", "g1", model.Record{"id": "g1", "a": "uno"}))

		got, err := b.Get(ctx, "goals", "g1")
		require.NoError(t, err)
		assert.Equal(t, model.Record{"id": "g1", "a": "uno"}, got)
	})

	t.Run("ListOrdersByIDAndPartitionsCollections", func(t *testing.T) {
		b := ready(t, newBackend)
		ctx := context.Background()
		for _, id := range []string{"c", "a", "b"} {
			require.NoError(t, b.Put(ctx, "appointments", id, model.Record{"id": id}))
		}
		require.NoError(t, b.Put(ctx, "payments", "a", model.Record{"id": "a", "amount": float64(10)}))

		list, err := b.List(ctx, "appointments")
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []string{"a", "b", "c"}, ids(list))

		empty, err := b.List(ctx, "plans")
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)
	})

	t.Run("DeleteReportsExistence", func(t *testing.T) {
		b := ready(t, newBackend)
		ctx := context.Background()
		require.NoError(t, b.Put(ctx, "athleteNotes", "n1", model.Record{"id": "n1"}))

		existed, err := b.Delete(ctx, "athleteNotes", "n1")
		require.NoError(t, err)
		assert.True(t, existed)

		existed, err = b.Delete(ctx, "athleteNotes", "n1")
		require.NoError(t, err)
		assert.False(t, existed)

		_, err = b.Get(ctx, "athleteNotes", "n1")
		assert.ErrorIs(t, err, apperrors.ErrRecordNotFound)
	})

	t.Run("Ping", func(t *testing.T) {
		b := ready(t, newBackend)
		assert.NoError(t, b.Ping(context.Background()))
	})
}

func ready(t *testing.T, newBackend func(t *testing.T) repository.CollectionBackend) repository.CollectionBackend {
	t.Helper()
	b := newBackend(t)
	require.NoError(t, b.EnsureSchema(context.Background()))
	return b
}

func ids(records []model.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID())
	}
	return out
}
