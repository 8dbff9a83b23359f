package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"coach-portal/internal/coaching/domain/model"
	"coach-portal/internal/coaching/usecase"
	apperrors "coach-portal/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRunReminders_RejectsBadSecretBeforeWork(t *testing.T) {
	env := newTestEnv(t)
	for _, header := range []string{"", "Bearer wrong", "s3cret", "Basic s3cret"} {
		req := httptest.NewRequest(http.MethodGet, "/cron/reminders", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := env.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, header)
		var body map[string]string
		decodeBody(t, resp, &body)
		assert.Equal(t, "Unauthorized", body["error"])
	}
	env.reminders.AssertNotCalled(t, "SendTomorrowReminders", mock.Anything)
}

func TestRunReminders_EmptySecretRejectsEveryone(t *testing.T) {
	env := newTestEnv(t)
	env.handler.CronSecret = ""
	req := httptest.NewRequest(http.MethodGet, "/cron/reminders", nil)
	req.Header.Set("Authorization", "Bearer ")
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRunReminders_Success(t *testing.T) {
	env := newTestEnv(t)
	env.reminders.On("SendTomorrowReminders", mock.Anything).
		Return(&usecase.ReminderResult{Message: "Reminders processed", Total: 2, Sent: 1}, nil)

	req := httptest.NewRequest(http.MethodGet, "/cron/reminders", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body usecase.ReminderResult
	decodeBody(t, resp, &body)
	assert.Equal(t, usecase.ReminderResult{Message: "Reminders processed", Total: 2, Sent: 1}, body)
	env.reminders.AssertExpectations(t)
}

func TestSendNotification_Success(t *testing.T) {
	env := newTestEnv(t)
	env.notifications.On("Send", mock.Anything, mock.MatchedBy(func(in usecase.SendNotificationInput) bool {
		return in.AthleteID == "a1" && in.WantsEmail() && in.AthleteEmail == "ana@example.com"
	})).Return(&usecase.SendNotificationResult{
		Notification: model.Notification{ID: "n1", UserID: "ath-user-a1", Title: "Hi"},
		EmailSent:    true,
	}, nil)

	resp := env.do(t, http.MethodPost, "/notifications/send",
		`{"athleteId":"a1","title":"Hi","message":"m","type":"message","athleteEmail":"ana@example.com"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Notification model.Notification `json:"notification"`
		EmailSent    bool               `json:"emailSent"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "ath-user-a1", body.Notification.UserID)
	assert.True(t, body.EmailSent)
	env.notifications.AssertExpectations(t)
}

func TestSendNotification_ValidationError(t *testing.T) {
	env := newTestEnv(t)
	env.notifications.On("Send", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewValidationError("Missing required fields").WithCause(apperrors.ErrMissingFields))

	resp := env.do(t, http.MethodPost, "/notifications/send", `{"athleteId":"a1"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "Missing required fields", body["error"])
}

func TestSendNotification_StorageErrorIs500(t *testing.T) {
	env := newTestEnv(t)
	env.notifications.On("Send", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	resp := env.do(t, http.MethodPost, "/notifications/send", `{"athleteId":"a1","title":"t","message":"m","type":"goal"}`)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "Internal Server Error", body["error"])
}

func TestSendNotification_BadJSON(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodPost, "/notifications/send", `{oops`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	env.notifications.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func multipartRequest(t *testing.T, folder, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if folder != "" {
		require.NoError(t, w.WriteField("folder", folder))
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUpload_StoresAndServesFile(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.app.Test(multipartRequest(t, "documents", "plan week 1.pdf", []byte("%PDF-1.4")))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result usecase.UploadResult
	decodeBody(t, resp, &result)
	assert.Equal(t, "plan week 1.pdf", result.Name)
	assert.Equal(t, int64(8), result.Size)
	require.Contains(t, result.URL, "/api/files/documents/")

	path := result.URL[len("/api"):]
	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestUpload_Validation(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.app.Test(multipartRequest(t, "secrets", "a.txt", []byte("x")))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = env.app.Test(multipartRequest(t, "avatars", "", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = env.app.Test(multipartRequest(t, "avatars", "big.bin", bytes.Repeat([]byte("x"), 2048)))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDownloadFile_NotFound(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/files/documents/nope.pdf", "/files/secrets/x"} {
		resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, path)
	}
}

func TestDashboardSummary(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.store.Insert(context.Background(), model.CollectionAthletes, model.Record{"id": "a1", "status": "active"})
	require.NoError(t, err)

	resp := env.do(t, http.MethodGet, "/dashboard/summary", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var summary usecase.DashboardSummary
	decodeBody(t, resp, &summary)
	assert.Equal(t, 1, summary.ActiveAthletes)
}

func TestReplayChanges(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/changes/users", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/changes/goals?since=0-0", "")
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "Change stream not configured", body["error"])
}

func TestWebsocketRouteRequiresUpgrade(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/ws/changes?collections=goals", "")
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
