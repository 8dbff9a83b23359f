package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	authconfig "coach-portal/internal/auth/config"
	coachhttp "coach-portal/internal/coaching/adapter/http"
	"coach-portal/internal/coaching/config"
	"coach-portal/internal/coaching/domain/model"
	"coach-portal/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func memoryConfig(t *testing.T) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Blob.Dir = t.TempDir()
	cfg.CronSecret = "s3cret"
	return cfg
}

func newApp(c *Container) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: coachhttp.ErrorHandler(c.Logger)})
	c.RegisterRoutes(app.Group("/api"))
	return app
}

func TestContainer_MemoryWithoutAuth(t *testing.T) {
	ctx := context.Background()
	c, err := NewContainer(ctx, memoryConfig(t), &authconfig.Config{}, logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(ctx) })

	assert.Nil(t, c.AuthModule)
	assert.Nil(t, c.Changes)
	require.NoError(t, c.HealthCheck(ctx))

	app := newApp(c)
	req := httptest.NewRequest("POST", "/api/data/goals", strings.NewReader(`{"id":"g1","title":"Run"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/auth/me", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestContainer_RecordEventsReachRealtime(t *testing.T) {
	ctx := context.Background()
	c, err := NewContainer(ctx, memoryConfig(t), nil, logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(ctx) })

	ch := make(chan model.StoredChange, 1)
	c.Realtime.Subscribe(ctx, "sub-1", []string{"goals"}, ch)

	_, err = c.Store.Insert(ctx, "goals", model.Record{"id": "g1"})
	require.NoError(t, err)

	select {
	case change := <-ch:
		assert.Equal(t, "g1", change.ID)
		assert.Equal(t, "record.created", change.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no change delivered")
	}
}

func TestContainer_AuthEnabledGuardsData(t *testing.T) {
	ctx := context.Background()
	authCfg := &authconfig.Config{
		SessionSecret: "container-test-secret-0123456789",
		SessionIssuer: "coach-portal",
		SessionTTL:    time.Hour,
		PolicyEnabled: true,
		BcryptCost:    bcrypt.MinCost,
	}
	c, err := NewContainer(ctx, memoryConfig(t), authCfg, logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(ctx) })
	require.NotNil(t, c.AuthModule)

	app := newApp(c)
	resp, err := app.Test(httptest.NewRequest("GET", "/api/data/goals", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// cron keeps its own secret
	req := httptest.NewRequest("GET", "/api/cron/reminders", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestContainer_HealthCheckFailsWithStorage(t *testing.T) {
	ctx := context.Background()
	c, err := NewContainer(ctx, memoryConfig(t), nil, logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(ctx) })

	c.Backend.(interface{ SetFailure(error) }).SetFailure(assert.AnError)
	assert.Error(t, c.HealthCheck(ctx))
}

func TestContainer_UnknownBackend(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Storage.Backend = "cassandra"
	_, err := NewContainer(context.Background(), cfg, nil, logger.NewNopLogger())
	assert.ErrorContains(t, err, "unknown storage backend")
}
