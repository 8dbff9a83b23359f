package usecase

import (
	"context"
	"testing"
	"time"

	"coach-portal/internal/coaching/domain/model"
	apperrors "coach-portal/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNotificationUsecase(t *testing.T, mailer *MockMailer) (*notificationUsecase, CollectionStore) {
	t.Helper()
	store, _ := newTestStore(t)
	uc := NewNotificationUsecase(store, mailer, EmailTemplates{PortalURL: "https://portal.example.com"}, nil).(*notificationUsecase)
	uc.now = func() time.Time { return time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC) }
	return uc, store
}

func TestNotificationUsecase_CreatesAndEmails(t *testing.T) {
	mailer := &MockMailer{}
	uc, store := newNotificationUsecase(t, mailer)

	res, err := uc.Send(context.Background(), SendNotificationInput{
		AthleteID: "a1", Title: "New plan", Message: "Your October plan is ready",
		Type: model.NotificationDocument, Link: "/portal/plans", AthleteEmail: "ana@example.com",
	})
	require.NoError(t, err)
	assert.True(t, res.EmailSent)
	assert.NotEmpty(t, res.Notification.ID)
	assert.Equal(t, "ath-user-a1", res.Notification.UserID)
	assert.False(t, res.Notification.Read)
	assert.Equal(t, "2026-10-19T08:30:00.000Z", res.Notification.CreatedAt)

	require.Len(t, mailer.Sent, 1)
	assert.Equal(t, "ana@example.com", mailer.Sent[0].To)
	assert.Equal(t, "New document: New plan", mailer.Sent[0].Subject)

	stored := store.ReadOne(context.Background(), model.CollectionNotifications, res.Notification.ID)
	require.NotNil(t, stored)
	assert.Equal(t, false, stored["read"])
}

func TestNotificationUsecase_EmailFailureKeepsNotification(t *testing.T) {
	mailer := &MockMailer{SendFn: func(model.Email) bool { return false }}
	uc, store := newNotificationUsecase(t, mailer)

	res, err := uc.Send(context.Background(), SendNotificationInput{
		AthleteID: "a1", Title: "t", Message: "m", Type: "goal", AthleteEmail: "ana@example.com",
	})
	require.NoError(t, err)
	assert.False(t, res.EmailSent)
	assert.Len(t, store.ReadAll(context.Background(), model.CollectionNotifications, nil), 1)
}

func TestNotificationUsecase_NoEmailWhenDisabledOrNoAddress(t *testing.T) {
	mailer := &MockMailer{}
	uc, _ := newNotificationUsecase(t, mailer)
	no := false

	res, err := uc.Send(context.Background(), SendNotificationInput{
		AthleteID: "a1", Title: "t", Message: "m", Type: "system", SendEmail: &no, AthleteEmail: "ana@example.com",
	})
	require.NoError(t, err)
	assert.False(t, res.EmailSent)

	res, err = uc.Send(context.Background(), SendNotificationInput{AthleteID: "a1", Title: "t", Message: "m", Type: "system"})
	require.NoError(t, err)
	assert.False(t, res.EmailSent)
	assert.Empty(t, mailer.Sent)
}

func TestNotificationUsecase_MissingFields(t *testing.T) {
	uc, store := newNotificationUsecase(t, &MockMailer{})
	_, err := uc.Send(context.Background(), SendNotificationInput{AthleteID: "a1", Title: "t"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.ErrorIs(t, err, apperrors.ErrMissingFields)
	assert.Empty(t, store.ReadAll(context.Background(), model.CollectionNotifications, nil))
}

func TestNotificationUsecase_MissingFieldsListedInFormOrder(t *testing.T) {
	uc, _ := newNotificationUsecase(t, &MockMailer{})
	for i := 0; i < 20; i++ {
		_, err := uc.Send(context.Background(), SendNotificationInput{Title: "t"})
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, []string{"athleteId", "message", "type"}, appErr.Details["missing"])
	}
}

func TestSendNotificationInput_WantsEmail(t *testing.T) {
	yes, no := true, false
	assert.True(t, SendNotificationInput{}.WantsEmail())
	assert.True(t, SendNotificationInput{SendEmail: &yes}.WantsEmail())
	assert.False(t, SendNotificationInput{SendEmail: &no}.WantsEmail())
}
