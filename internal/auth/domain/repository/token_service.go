package repository

import (
	"context"
	"time"

	"coach-portal/internal/auth/domain/model"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService defines the interface for session token operations
type TokenService interface {
	GenerateToken(ctx context.Context, principal model.Principal) (string, time.Time, error)
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents JWT claims
type Claims struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	AthleteID string `json:"athleteId,omitempty"`
	jwt.RegisteredClaims
}

// Principal returns the identity stored in the claims.
func (c *Claims) Principal() model.Principal {
	return model.Principal{
		UserID:    c.UserID,
		Email:     c.Email,
		Role:      c.Role,
		AthleteID: c.AthleteID,
	}
}
