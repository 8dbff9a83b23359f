package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"coach-portal/internal/coaching/adapter/blob"
	"coach-portal/internal/coaching/adapter/persistence/memory"
	"coach-portal/internal/coaching/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	app           *fiber.App
	handler       *Handler
	backend       *memory.Backend
	store         usecase.CollectionStore
	notifications *MockNotificationUsecase
	reminders     *MockReminderUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	backend := memory.NewBackend()
	store := usecase.NewCollectionStore(backend, nil, nil)

	blobs, err := blob.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	env := &testEnv{
		backend:       backend,
		store:         store,
		notifications: new(MockNotificationUsecase),
		reminders:     new(MockReminderUsecase),
	}
	env.handler = NewHandler(
		store,
		env.notifications,
		env.reminders,
		usecase.NewUploadUsecase(blobs, "/api/files", 1024, nil),
		usecase.NewRealtimeUsecase(nil, nil),
		usecase.NewDashboardUsecase(store, nil),
		"s3cret",
		nil,
	)
	env.app = fiber.New(fiber.Config{ErrorHandler: ErrorHandler(nil)})
	env.handler.RegisterRoutes(env.app, Guards{})
	return env
}

func (e *testEnv) do(t *testing.T, method, target, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}
