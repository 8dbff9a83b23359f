package blob

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	apperrors "coach-portal/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestLocalStorage_PutOpen(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "documents/123-plan.pdf", "application/pdf", strings.NewReader("%PDF-1.4"), 8))

	rc, info, err := s.Open(ctx, "documents/123-plan.pdf")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(body))
	assert.Equal(t, int64(8), info.Size)
	assert.Equal(t, "application/pdf", info.ContentType)
}

func TestLocalStorage_OpenMissing(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	_, _, err = s.Open(context.Background(), "avatars/none.png")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	for _, key := range []string{"", "../etc/passwd", "documents/../../x", "/"} {
		err := s.Put(context.Background(), key, "", strings.NewReader("x"), 1)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestGridFSStorage_PutOpen(t *testing.T) {
	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("TEST_MONGODB_URI not set, skipping GridFS integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	defer client.Disconnect(context.Background())
	if err := client.Ping(ctx, nil); err != nil {
		t.Skip("MongoDB not available for testing:", err)
	}
	db := client.Database("coach_portal_test")
	bucketName := "uploads_" + time.Now().Format("150405000")
	defer func() {
		_ = db.Collection(bucketName + ".files").Drop(context.Background())
		_ = db.Collection(bucketName + ".chunks").Drop(context.Background())
	}()

	s, err := NewGridFSStorage(db, bucketName)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "avatars/1-me.png", "image/png", strings.NewReader("png-bytes"), 9))

	rc, info, err := s.Open(ctx, "avatars/1-me.png")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(body))
	assert.Equal(t, "image/png", info.ContentType)
	assert.Equal(t, int64(9), info.Size)

	_, _, err = s.Open(ctx, "avatars/missing.png")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
