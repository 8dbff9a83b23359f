package http_test

import (
	"context"

	"coach-portal/internal/auth/domain/model"
	"coach-portal/internal/auth/usecase"
	coachmodel "coach-portal/internal/coaching/domain/model"

	"github.com/stretchr/testify/mock"
)

type mockAuthUsecase struct {
	mock.Mock
}

func (m *mockAuthUsecase) Login(ctx context.Context, req usecase.LoginRequest) (*model.Session, error) {
	args := m.Called(ctx, req)
	if s := args.Get(0); s != nil {
		return s.(*model.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthUsecase) ValidateToken(ctx context.Context, tokenString string) (*model.Principal, error) {
	args := m.Called(ctx, tokenString)
	if p := args.Get(0); p != nil {
		return p.(*model.Principal), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthUsecase) CreateUser(ctx context.Context, req usecase.CreateUserRequest) (*model.Principal, error) {
	args := m.Called(ctx, req)
	if p := args.Get(0); p != nil {
		return p.(*model.Principal), args.Error(1)
	}
	return nil, args.Error(1)
}

// stubRecords serves ReadOne from a fixed map keyed by collection/id.
type stubRecords map[string]coachmodel.Record

func (s stubRecords) ReadOne(ctx context.Context, collection, id string) coachmodel.Record {
	return s[collection+"/"+id]
}

var (
	coachPrincipal   = &model.Principal{UserID: "staff-1", Email: "coach@example.com", Role: "coach"}
	athletePrincipal = &model.Principal{UserID: "ath-user-a1", Email: "ana@example.com", Role: "athlete", AthleteID: "a1"}
)
