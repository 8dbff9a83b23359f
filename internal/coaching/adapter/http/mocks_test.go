package http

import (
	"context"

	"coach-portal/internal/coaching/usecase"

	"github.com/stretchr/testify/mock"
)

type MockNotificationUsecase struct {
	mock.Mock
}

func (m *MockNotificationUsecase) Send(ctx context.Context, in usecase.SendNotificationInput) (*usecase.SendNotificationResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.SendNotificationResult), args.Error(1)
}

type MockReminderUsecase struct {
	mock.Mock
}

func (m *MockReminderUsecase) SendTomorrowReminders(ctx context.Context) (*usecase.ReminderResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ReminderResult), args.Error(1)
}
