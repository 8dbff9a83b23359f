package http

import (
	"errors"

	"coach-portal/internal/auth/usecase"
	apperrors "coach-portal/internal/shared/errors"
	"coach-portal/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// AuthHTTPHandler handles HTTP requests for authentication
type AuthHTTPHandler struct {
	usecase usecase.AuthUsecaseInterface
	log     logger.Logger
}

// NewAuthHTTPHandler creates a new authentication HTTP handler
func NewAuthHTTPHandler(uc usecase.AuthUsecaseInterface, log logger.Logger) *AuthHTTPHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &AuthHTTPHandler{usecase: uc, log: log.WithComponent("auth-http")}
}

// SetupAuthRoutes mounts /login (rate limited) and /me (protected) on router.
func (h *AuthHTTPHandler) SetupAuthRoutes(router fiber.Router, middleware *AuthMiddleware, loginLimit fiber.Handler) {
	if loginLimit != nil {
		router.Post("/login", loginLimit, h.Login)
	} else {
		router.Post("/login", h.Login)
	}
	router.Get("/me", middleware.Protect(), h.GetCurrentUser)
}

// Login exchanges email and password for a session token
func (h *AuthHTTPHandler) Login(c *fiber.Ctx) error {
	var req usecase.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	session, err := h.usecase.Login(c.UserContext(), req)
	if err != nil {
		var appErr *apperrors.AppError
		switch {
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid email or password",
			})
		case errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeValidation:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": appErr.Message,
			})
		default:
			h.log.WithContext(c.UserContext()).Errorf("login failed: %v", err)
			return err
		}
	}

	return c.JSON(fiber.Map{
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
		"user":      session.User,
	})
}

// GetCurrentUser returns the session principal
func (h *AuthHTTPHandler) GetCurrentUser(c *fiber.Ctx) error {
	principal, ok := GetPrincipal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}
	return c.JSON(principal)
}
