package model

import (
	"errors"
	"time"
)

var (
	ErrEmailTaken      = errors.New("email is already registered")
	ErrInvalidRole     = errors.New("invalid role")
	ErrWeakPassword    = errors.New("password must be at least 8 characters")
	ErrInvalidEmail    = errors.New("invalid email format")
	ErrMissingAthlete  = errors.New("athlete logins require an athleteId")
	ErrAccountInactive = errors.New("account is inactive")
)

// Principal is the identity carried by a session token.
type Principal struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Role      string `json:"role"`
	AthleteID string `json:"athleteId,omitempty"`
}

// IsStaff reports whether the principal is a coach or an admin.
func (p Principal) IsStaff() bool {
	return p.Role == "coach" || p.Role == "admin"
}

// Session is an issued token and its expiry.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      Principal `json:"user"`
}
