package memory

import (
	"context"
	"errors"
	"testing"

	"coach-portal/internal/coaching/adapter/persistence/backendtest"
	"coach-portal/internal/coaching/domain/model"
	"coach-portal/internal/coaching/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBackend_Contract(t *testing.T) {
	backendtest.Run(t, func(t *testing.T) repository.CollectionBackend {
		return NewBackend()
	})
}

func TestMemoryBackend_ReturnsCopies(t *testing.T) {
	b := NewBackend()
	ctx := context.Background()
	rec := model.Record{"id": "a1", "name": "Ana"}
	require.NoError(t, b.Put(ctx, "athletes", "a1", rec))
	rec["name"] = "changed after put"

	got, err := b.Get(ctx, "athletes", "a1")
	require.NoError(t, err)
	got["name"] = "changed after get"

	again, err := b.Get(ctx, "athletes", "a1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", again["name"])
}

func TestMemoryBackend_SimulatedFailure(t *testing.T) {
	b := NewBackend()
	outage := errors.New("connection refused")
	b.SetFailure(outage)

	_, err := b.List(context.Background(), "athletes")
	assert.ErrorIs(t, err, outage)
	assert.ErrorIs(t, b.Ping(context.Background()), outage)

	b.SetFailure(nil)
	assert.NoError(t, b.Ping(context.Background()))
}
