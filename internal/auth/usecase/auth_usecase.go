package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"coach-portal/internal/auth/config"
	"coach-portal/internal/auth/domain/model"
	"coach-portal/internal/auth/domain/repository"
	coachmodel "coach-portal/internal/coaching/domain/model"
	apperrors "coach-portal/internal/shared/errors"
	"coach-portal/internal/shared/eventbus"
	"coach-portal/internal/shared/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// AuthUsecaseInterface defines the contract for authentication use cases.
type AuthUsecaseInterface interface {
	Login(ctx context.Context, req LoginRequest) (*model.Session, error)
	ValidateToken(ctx context.Context, tokenString string) (*model.Principal, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*model.Principal, error)
}

// LoginRequest represents the login request. Role "athlete" checks athlete
// logins; anything else checks staff logins.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateUserRequest creates a staff or athlete login.
type CreateUserRequest struct {
	Email     string
	Password  string
	Name      string
	Role      string
	AthleteID string
}

// AuthUsecase implements the authentication logic.
type AuthUsecase struct {
	users    repository.UserRepository
	tokenSvc repository.TokenService
	config   *config.Config
	events   eventbus.Publisher
	logger   logger.Logger
	now      func() time.Time

	dummyOnce sync.Once
	dummy     []byte
}

// NewAuthUsecase creates a new instance of AuthUsecase. events may be nil.
func NewAuthUsecase(
	users repository.UserRepository,
	tokenSvc repository.TokenService,
	cfg *config.Config,
	events eventbus.Publisher,
	log logger.Logger,
) *AuthUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &AuthUsecase{
		users:    users,
		tokenSvc: tokenSvc,
		config:   cfg,
		events:   events,
		logger:   log.WithComponent("auth"),
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login checks the password against the stored bcrypt hash. Unknown users, wrong
// passwords and inactive accounts all answer ErrInvalidCredentials.
func (uc *AuthUsecase) Login(ctx context.Context, req LoginRequest) (*model.Session, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperrors.NewValidationError("Email and password are required").WithCause(apperrors.ErrInvalidInput)
	}

	principal, hash, active, err := uc.lookup(ctx, email, req.Role)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			// spend a comparison anyway so unknown emails answer in similar time
			_ = bcrypt.CompareHashAndPassword(uc.dummyHash(), []byte(req.Password))
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !active {
		uc.logger.WithContext(ctx).Infof("login refused for inactive account %s", principal.UserID)
		return nil, apperrors.ErrInvalidCredentials
	}

	token, expires, err := uc.tokenSvc.GenerateToken(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if uc.events != nil {
		uc.events.PublishAndForget(ctx, eventbus.NewBasicEvent(eventbus.EventTypeUserLoggedIn, principal.UserID, "auth"))
	}
	return &model.Session{Token: token, ExpiresAt: expires, User: principal}, nil
}

func (uc *AuthUsecase) lookup(ctx context.Context, email, role string) (model.Principal, string, bool, error) {
	if role == coachmodel.RoleAthlete {
		u, err := uc.users.FindAthleteUserByEmail(ctx, email)
		if err != nil {
			return model.Principal{}, "", false, err
		}
		return model.Principal{
			UserID:    u.ID,
			Email:     u.Email,
			Name:      u.Name,
			Role:      coachmodel.RoleAthlete,
			AthleteID: u.AthleteID,
		}, u.PasswordHash, u.Active, nil
	}

	u, err := uc.users.FindStaffByEmail(ctx, email)
	if err != nil {
		return model.Principal{}, "", false, err
	}
	return model.Principal{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   u.Role,
	}, u.PasswordHash, u.Active, nil
}

func (uc *AuthUsecase) dummyHash() []byte {
	uc.dummyOnce.Do(func() {
		uc.dummy, _ = bcrypt.GenerateFromPassword([]byte(uuid.NewString()), uc.config.BcryptCost)
	})
	return uc.dummy
}

// ValidateToken validates a session token
func (uc *AuthUsecase) ValidateToken(ctx context.Context, tokenString string) (*model.Principal, error) {
	claims, err := uc.tokenSvc.ValidateToken(ctx, tokenString)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	p := claims.Principal()
	return &p, nil
}

// CreateUser stores a new login with a bcrypt hash. Athlete logins get the
// synthesized id ath-user-{athleteId}.
func (uc *AuthUsecase) CreateUser(ctx context.Context, req CreateUserRequest) (*model.Principal, error) {
	email := normalizeEmail(req.Email)
	if !emailRegex.MatchString(email) {
		return nil, model.ErrInvalidEmail
	}
	if len(req.Password) < minPasswordLength {
		return nil, model.ErrWeakPassword
	}

	switch req.Role {
	case coachmodel.RoleAdmin, coachmodel.RoleCoach, coachmodel.RoleAthlete:
	default:
		return nil, model.ErrInvalidRole
	}
	if req.Role == coachmodel.RoleAthlete && strings.TrimSpace(req.AthleteID) == "" {
		return nil, model.ErrMissingAthlete
	}

	if _, _, _, err := uc.lookup(ctx, email, req.Role); err == nil {
		return nil, model.ErrEmailTaken
	} else if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), uc.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	createdAt := uc.now().UTC().Format(time.RFC3339)

	if req.Role == coachmodel.RoleAthlete {
		u, err := uc.users.CreateAthleteUser(ctx, coachmodel.AthleteUser{
			ID:           coachmodel.AthleteUserID(req.AthleteID),
			AthleteID:    req.AthleteID,
			Email:        email,
			Name:         strings.TrimSpace(req.Name),
			PasswordHash: string(hash),
			Active:       true,
			CreatedAt:    createdAt,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return &model.Principal{UserID: u.ID, Email: u.Email, Name: u.Name, Role: coachmodel.RoleAthlete, AthleteID: u.AthleteID}, nil
	}

	u, err := uc.users.CreateStaff(ctx, coachmodel.StaffUser{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		Role:         req.Role,
		PasswordHash: string(hash),
		Active:       true,
		CreatedAt:    createdAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &model.Principal{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}, nil
}

// Ensure AuthUsecase implements AuthUsecaseInterface
var _ AuthUsecaseInterface = (*AuthUsecase)(nil)
