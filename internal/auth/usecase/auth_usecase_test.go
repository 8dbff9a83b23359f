package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"coach-portal/internal/auth/adapter/persistence"
	"coach-portal/internal/auth/adapter/security"
	"coach-portal/internal/auth/config"
	"coach-portal/internal/auth/domain/model"
	"coach-portal/internal/coaching/adapter/persistence/memory"
	coachmodel "coach-portal/internal/coaching/domain/model"
	coachusecase "coach-portal/internal/coaching/usecase"
	apperrors "coach-portal/internal/shared/errors"
	"coach-portal/internal/shared/eventbus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	uc      *AuthUsecase
	store   coachusecase.CollectionStore
	backend *memory.Backend
	bus     *eventbus.EventBus
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	cfg := &config.Config{
		SessionSecret: "unit-test-session-secret",
		SessionIssuer: "coach-portal",
		SessionTTL:    time.Hour,
		BcryptCost:    bcrypt.MinCost,
	}
	tokens, err := security.NewJWTokenService(cfg)
	require.NoError(t, err)

	backend := memory.NewBackend()
	store := coachusecase.NewCollectionStore(backend, nil, nil)
	bus := eventbus.NewEventBus(nil)
	return &authFixture{
		uc:      NewAuthUsecase(persistence.NewCollectionUserRepository(store), tokens, cfg, bus, nil),
		store:   store,
		backend: backend,
		bus:     bus,
	}
}

func TestCreateUserAndLogin_Staff(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	created, err := f.uc.CreateUser(ctx, CreateUserRequest{Email: " Coach@Example.com ", Password: "correct-horse", Name: "Cora", Role: "coach"})
	require.NoError(t, err)
	assert.Equal(t, "coach@example.com", created.Email)
	assert.NotEmpty(t, created.UserID)

	loggedIn := make(chan string, 1)
	f.bus.Subscribe(eventbus.EventTypeUserLoggedIn, func(ctx context.Context, e eventbus.Event) error {
		loggedIn <- e.Data().(string)
		return nil
	})

	session, err := f.uc.Login(ctx, LoginRequest{Email: "coach@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "coach", session.User.Role)
	assert.Equal(t, "Cora", session.User.Name)

	select {
	case id := <-loggedIn:
		assert.Equal(t, created.UserID, id)
	case <-time.After(time.Second):
		t.Fatal("no login event")
	}

	principal, err := f.uc.ValidateToken(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, created.UserID, principal.UserID)
}

func TestCreateUserAndLogin_Athlete(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	created, err := f.uc.CreateUser(ctx, CreateUserRequest{Email: "ana@example.com", Password: "pa55word!", Role: "athlete", AthleteID: "a1"})
	require.NoError(t, err)
	assert.Equal(t, "ath-user-a1", created.UserID)

	// the reminder sweep joins on these fields
	stored := f.store.ReadOne(ctx, coachmodel.CollectionAthleteUsers, "ath-user-a1")
	require.NotNil(t, stored)
	assert.Equal(t, "a1", stored["athleteId"])
	assert.Equal(t, true, stored["active"])

	session, err := f.uc.Login(ctx, LoginRequest{Email: "ana@example.com", Password: "pa55word!", Role: "athlete"})
	require.NoError(t, err)
	assert.Equal(t, "a1", session.User.AthleteID)

	// athlete credentials do not open a staff login
	_, err = f.uc.Login(ctx, LoginRequest{Email: "ana@example.com", Password: "pa55word!"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLogin_Failures(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, err := f.uc.CreateUser(ctx, CreateUserRequest{Email: "coach@example.com", Password: "correct-horse", Role: "coach"})
	require.NoError(t, err)

	_, err = f.uc.Login(ctx, LoginRequest{Email: "coach@example.com", Password: "wrong-horse"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.uc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "whatever1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.uc.Login(ctx, LoginRequest{Email: "", Password: ""})
	assert.True(t, apperrors.IsValidation(err))
}

func TestLogin_InactiveAccount(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	created, err := f.uc.CreateUser(ctx, CreateUserRequest{Email: "old@example.com", Password: "correct-horse", Role: "coach"})
	require.NoError(t, err)

	_, err = f.store.Update(ctx, coachmodel.CollectionStaffUsers, created.UserID, coachmodel.Record{"active": false})
	require.NoError(t, err)

	_, err = f.uc.Login(ctx, LoginRequest{Email: "old@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestValidateToken_Garbage(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.uc.ValidateToken(context.Background(), "garbage")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestCreateUser_Validation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	cases := []struct {
		req  CreateUserRequest
		want error
	}{
		{CreateUserRequest{Email: "not-an-email", Password: "longenough", Role: "coach"}, model.ErrInvalidEmail},
		{CreateUserRequest{Email: "a@example.com", Password: "short", Role: "coach"}, model.ErrWeakPassword},
		{CreateUserRequest{Email: "a@example.com", Password: "longenough", Role: "owner"}, model.ErrInvalidRole},
		{CreateUserRequest{Email: "a@example.com", Password: "longenough", Role: "athlete"}, model.ErrMissingAthlete},
	}
	for _, tc := range cases {
		_, err := f.uc.CreateUser(ctx, tc.req)
		assert.True(t, errors.Is(err, tc.want), "%+v: got %v", tc.req, err)
	}

	_, err := f.uc.CreateUser(ctx, CreateUserRequest{Email: "dup@example.com", Password: "longenough", Role: "admin"})
	require.NoError(t, err)
	_, err = f.uc.CreateUser(ctx, CreateUserRequest{Email: "DUP@example.com", Password: "longenough", Role: "coach"})
	assert.ErrorIs(t, err, model.ErrEmailTaken)
}

func TestCreateUser_StorageFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.backend.SetFailure(errors.New("db down"))
	_, err := f.uc.CreateUser(context.Background(), CreateUserRequest{Email: "a@example.com", Password: "longenough", Role: "coach"})
	assert.Error(t, err)
}
