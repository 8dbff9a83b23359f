package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"coach-portal/internal/coaching/adapter/persistence/backendtest"
	"coach-portal/internal/coaching/domain/repository"
	"coach-portal/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresBackend_Contract(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping Postgres integration tests")
	}

	n := 0
	backendtest.Run(t, func(t *testing.T) repository.CollectionBackend {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		n++
		table := fmt.Sprintf("collections_test_%d_%d", time.Now().UnixNano(), n)
		b, err := NewBackend(ctx, dsn, table, logger.NewNopLogger())
		require.NoError(t, err)
		if err := b.Ping(ctx); err != nil {
			b.Close()
			t.Skip("Postgres not available for testing:", err)
		}
		t.Cleanup(func() {
			_, _ = b.pool.Exec(context.Background(), "DROP TABLE IF EXISTS "+table)
			_ = b.Close()
		})
		return b
	})
}

func TestDecode(t *testing.T) {
	rec, err := decode([]byte(`{"id":"a1","b":{"x":1}}`))
	require.NoError(t, err)
	assert.Equal(t, "a1", rec.ID())
	assert.Equal(t, map[string]interface{}{"x": float64(1)}, rec["b"])

	_, err = decode([]byte(`not json`))
	assert.Error(t, err)
}
