package mongodb

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
	"go.mongodb.org/mongo-driver/bson"
)

func TestMongoBackend_Contract(t *testing.T) {
	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("TEST_MONGODB_URI not set, skipping MongoDB integration tests")
	}

	n := 0
	backendtest.Run(t, func(t *testing.T) repository.CollectionBackend {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		n++
		table := fmt.Sprintf("rows_%d_%d", time.Now().UnixNano(), n)
		b, err := Connect(ctx, uri, "coach_portal_test", table, logger.NewNopLogger())
		require.NoError(t, err)
		if err := b.Ping(ctx); err != nil {
			t.Skip("MongoDB not available for testing:", err)
		}
		t.Cleanup(func() {
			_ = b.rows.Drop(context.Background())
			_ = b.Close()
		})
		return b
	})
}

func TestToRecord_FlattensBSON(t *testing.T) {
	raw, err := bson.Marshal(bson.M{
		"id":     "a1",
		"weight": 61.5,
		"count":  int32(3),
		"nested": bson.M{"x": 1.0},
		"tags":   bson.A{"a", "b"},
	})
	require.NoError(t, err)

	rec, err := toRecord(raw)
	require.NoError(t, err)
	assert.Equal(t, "a1", rec.ID())
	assert.Equal(t, 61.5, rec["weight"])
	assert.Equal(t, float64(3), rec["count"])
	assert.Equal(t, map[string]interface{}{"x": float64(1)}, rec["nested"])
	assert.Equal(t, []interface{}{"a", "b"}, rec["tags"])
}

func TestRowKey(t *testing.T) {
	assert.Equal(t, "athletes/a1", rowKey("athletes", "a1"))
}
