package http

import (
	"context"
	"path"
	"strings"
	"time"

	"coach-portal/internal/auth/adapter/security"
	"coach-portal/internal/auth/domain/model"
	"coach-portal/internal/auth/usecase"
	coachmodel "coach-portal/internal/coaching/domain/model"
	"coach-portal/internal/shared/contextkeys"
	"coach-portal/internal/shared/logger"
	"coach-portal/internal/shared/utils"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const principalLocal = "principal"

// RecordReader loads the record an update or delete targets.
type RecordReader interface {
	ReadOne(ctx context.Context, collection, id string) coachmodel.Record
}

// AuthMiddleware provides authentication middleware for Fiber
type AuthMiddleware struct {
	usecase usecase.AuthUsecaseInterface
	log     logger.Logger
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(uc usecase.AuthUsecaseInterface, log logger.Logger) *AuthMiddleware {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &AuthMiddleware{usecase: uc, log: log.WithComponent("auth-middleware")}
}

// SecurityHeaders adds security headers
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	}
}

// RateLimiter limits login attempts per client address
func RateLimiter(max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        window,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.Get("X-Forwarded-For", c.IP())
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded. Please try again later.",
			})
		},
	})
}

// RequestID tags every request with an X-Request-ID
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{Header: fiber.HeaderXRequestID})
}

// RequestContext copies the request id set by RequestID into the user context.
func RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := c.Locals("requestid").(string); ok && id != "" {
			c.SetUserContext(utils.WithRequestID(c.UserContext(), id))
		}
		return c.Next()
	}
}

// Protect returns middleware that requires a valid session token
func (m *AuthMiddleware) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		principal, err := m.usecase.ValidateToken(c.UserContext(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		c.Locals(principalLocal, *principal)
		c.SetUserContext(utils.WithSession(c.UserContext(), utils.Session{
			UserID:    principal.UserID,
			Email:     principal.Email,
			Role:      principal.Role,
			AthleteID: principal.AthleteID,
		}))
		return c.Next()
	}
}

// RequireRole allows only the given roles. It must run after Protect.
func (m *AuthMiddleware) RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := GetPrincipal(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}
		for _, r := range roles {
			if principal.Role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Insufficient permissions",
		})
	}
}

// AccessGate evaluates the CEL policy for /data/:collection calls and pins an
// athlete's reads to their own records. It must run after Protect. Unknown
// collections pass through so the resource answers its own 400.
func (m *AuthMiddleware) AccessGate(policy *security.AccessPolicy, records RecordReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := GetPrincipal(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		collection := path.Base(c.Path())
		if !coachmodel.IsAllowedCollection(collection) {
			return c.Next()
		}

		req := security.AccessRequest{Collection: collection}
		switch c.Method() {
		case fiber.MethodGet:
			req.Operation = security.OpRead
		case fiber.MethodPost:
			req.Operation = security.OpCreate
			req.Data = bodyMap(c)
		case fiber.MethodPut:
			req.Operation = security.OpUpdate
			req.Data = bodyMap(c)
			if id, _ := req.Data["id"].(string); id != "" {
				req.Resource = records.ReadOne(c.UserContext(), collection, id)
			}
		case fiber.MethodDelete:
			req.Operation = security.OpDelete
			if id := c.Query("id"); id != "" {
				req.Resource = records.ReadOne(c.UserContext(), collection, id)
			}
		default:
			return c.Next()
		}

		decision := policy.Evaluate(c.UserContext(), principal, req)
		if !decision.Allowed {
			m.log.WithContext(c.UserContext()).Infof("denied %s on %s for %s", req.Operation, collection, principal.UserID)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Access denied",
			})
		}

		if req.Operation == security.OpRead {
			if field, value, scoped := security.ReadScope(principal, collection); scoped {
				args := c.Context().QueryArgs()
				args.Reset()
				args.Set(field, value)
			}
		}
		return c.Next()
	}
}

// bodyMap decodes a JSON object body; anything else yields an empty map and is
// left for the resource to reject.
func bodyMap(c *fiber.Ctx) map[string]interface{} {
	var body map[string]interface{}
	if err := c.App().Config().JSONDecoder(c.Body(), &body); err != nil || body == nil {
		return map[string]interface{}{}
	}
	return body
}

// extractToken reads a bearer token. ?token= is honored only on websocket
// upgrades, where browsers cannot set headers.
func extractToken(c *fiber.Ctx) string {
	if token, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	if websocket.IsWebSocketUpgrade(c) {
		return c.Query("token")
	}
	return ""
}

// GetPrincipal returns the session attached by Protect
func GetPrincipal(c *fiber.Ctx) (model.Principal, bool) {
	p, ok := c.Locals(principalLocal).(model.Principal)
	return p, ok
}

// GetUserID returns the session user id from the request's user context
func GetUserID(c *fiber.Ctx) (string, bool) {
	id, ok := c.UserContext().Value(contextkeys.UserIDKey).(string)
	return id, ok && id != ""
}
