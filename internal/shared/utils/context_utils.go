package utils

import (
	"context"
	"errors"

	"coach-portal/internal/shared/contextkeys"
)

// Context errors
var (
	ErrRequestIDNotFound = errors.New("requestID not found in context")
)

// Session is the identity attached to a request by the auth middleware
type Session struct {
	UserID    string
	Email     string
	Role      string
	AthleteID string
}

// WithSession stores every non-empty session field in the context.
func WithSession(ctx context.Context, s Session) context.Context {
	if s.UserID != "" {
		ctx = context.WithValue(ctx, contextkeys.UserIDKey, s.UserID)
	}
	if s.Email != "" {
		ctx = context.WithValue(ctx, contextkeys.UserEmailKey, s.Email)
	}
	if s.Role != "" {
		ctx = context.WithValue(ctx, contextkeys.RoleKey, s.Role)
	}
	if s.AthleteID != "" {
		ctx = context.WithValue(ctx, contextkeys.AthleteIDKey, s.AthleteID)
	}
	return ctx
}

// SessionFromContext rebuilds the session. ok is false when no user is attached.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s := Session{
		UserID:    stringValue(ctx, contextkeys.UserIDKey),
		Email:     stringValue(ctx, contextkeys.UserEmailKey),
		Role:      stringValue(ctx, contextkeys.RoleKey),
		AthleteID: stringValue(ctx, contextkeys.AthleteIDKey),
	}
	return s, s.UserID != ""
}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextkeys.RequestIDKey, requestID)
}

// GetRequestIDFromContext retrieves the request ID from the context.
func GetRequestIDFromContext(ctx context.Context) (string, error) {
	return required(ctx, contextkeys.RequestIDKey, ErrRequestIDNotFound)
}

// WithOperation tags the context with the operation name used in logs.
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, contextkeys.OperationKey, operation)
}

func required(ctx context.Context, key interface{}, notFound error) (string, error) {
	if v := stringValue(ctx, key); v != "" {
		return v, nil
	}
	return "", notFound
}

func stringValue(ctx context.Context, key interface{}) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(key).(string)
	return s
}
