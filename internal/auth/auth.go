package auth

import (
	"fmt"
	"time"

	authhttp "coach-portal/internal/auth/adapter/http"
	"coach-portal/internal/auth/adapter/persistence"
	"coach-portal/internal/auth/adapter/security"
	"coach-portal/internal/auth/config"
	"coach-portal/internal/auth/usecase"
	coachmodel "coach-portal/internal/coaching/domain/model"
	coachusecase "coach-portal/internal/coaching/usecase"
	"coach-portal/internal/shared/eventbus"
	"coach-portal/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

const (
	loginAttempts = 10
	loginWindow   = time.Minute
)

// AuthModule represents the complete authentication module
type AuthModule struct {
	usecase    *usecase.AuthUsecase
	handler    *authhttp.AuthHTTPHandler
	middleware *authhttp.AuthMiddleware
	policy     *security.AccessPolicy
	store      coachusecase.CollectionStore
	config     *config.Config
}

// NewAuthModule wires logins stored in the collection store to JWT sessions and
// the CEL access policy. cfg must carry a session secret.
func NewAuthModule(store coachusecase.CollectionStore, cfg *config.Config, events eventbus.Publisher, log logger.Logger) (*AuthModule, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	tokenSvc, err := security.NewJWTokenService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	policy, err := security.NewAccessPolicy(security.DefaultRules(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to compile access policy: %w", err)
	}

	users := persistence.NewCollectionUserRepository(store)
	authUsecase := usecase.NewAuthUsecase(users, tokenSvc, cfg, events, log)

	return &AuthModule{
		usecase:    authUsecase,
		handler:    authhttp.NewAuthHTTPHandler(authUsecase, log),
		middleware: authhttp.NewAuthMiddleware(authUsecase, log),
		policy:     policy,
		store:      store,
		config:     cfg,
	}, nil
}

// RegisterRoutes mounts /auth/login and /auth/me
func (m *AuthModule) RegisterRoutes(router fiber.Router) {
	group := router.Group("/auth", authhttp.SecurityHeaders())
	m.handler.SetupAuthRoutes(group, m.middleware, authhttp.RateLimiter(loginAttempts, loginWindow))
}

// DataGuards is the chain placed in front of /data/:collection. Empty when the
// access policy is disabled.
func (m *AuthModule) DataGuards() []fiber.Handler {
	if !m.config.PolicyEnabled {
		return nil
	}
	return []fiber.Handler{m.middleware.Protect(), m.middleware.AccessGate(m.policy, m.store)}
}

// StaffGuards is the chain placed in front of staff-only endpoints.
func (m *AuthModule) StaffGuards() []fiber.Handler {
	if !m.config.PolicyEnabled {
		return nil
	}
	return []fiber.Handler{
		m.middleware.Protect(),
		m.middleware.RequireRole(coachmodel.RoleAdmin, coachmodel.RoleCoach),
	}
}

// Usecase returns the auth usecase
func (m *AuthModule) Usecase() usecase.AuthUsecaseInterface {
	return m.usecase
}

// Middleware returns the auth middleware
func (m *AuthModule) Middleware() *authhttp.AuthMiddleware {
	return m.middleware
}
