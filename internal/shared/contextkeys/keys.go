package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "coach-portal context key " + string(c)
}

const (
	// RequestIDKey carries the correlation id set by the requestid middleware.
	RequestIDKey = contextKey("requestID")
	// UserIDKey carries the authenticated session's user id.
	UserIDKey = contextKey("userID")
	// UserEmailKey carries the authenticated session's email.
	UserEmailKey = contextKey("userEmail")
	// RoleKey carries the session role (admin, coach, athlete).
	RoleKey = contextKey("role")
	// AthleteIDKey carries the athlete id bound to an athlete session.
	AthleteIDKey = contextKey("athleteID")
	// ComponentKey and OperationKey are used by loggers.
	ComponentKey = contextKey("component")
	OperationKey = contextKey("operation")
)
