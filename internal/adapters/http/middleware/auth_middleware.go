package middleware

import (
	"errors"
	"strings"

	"stockdesk/internal/config"
	"stockdesk/internal/core/domain"
	"stockdesk/internal/pkg/jwt"
	"stockdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const sessionKey = "session"

// Authorizer is the role gate the guards delegate to
type Authorizer interface {
	Authorize(session *domain.Session, requiredRole string) error
}

// SessionMiddleware loads the session principal from the session cookie or
// the Authorization header. A missing or invalid token leaves the request
// anonymous; the guards decide whether that is allowed.
func SessionMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := sessionToken(c, cfg.Cookie.Name)
		if token == "" {
			return c.Next()
		}

		session, err := jwt.ValidateSessionToken(token, cfg.Session.Secret)
		if err == nil {
			c.Locals(sessionKey, session)
		} else if errors.Is(err, jwt.ErrTokenExpired) {
			c.Locals("sessionExpired", true)
		}

		return c.Next()
	}
}

// RequireSession rejects anonymous requests with 401
func RequireSession(gate Authorizer) fiber.Handler {
	return RequireRole(gate, "")
}

// RequireRole rejects anonymous requests with 401 and sessions holding a
// different role with 403. An empty role only requires a session.
func RequireRole(gate Authorizer, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := gate.Authorize(CurrentSession(c), role); err != nil {
			if expired, _ := c.Locals("sessionExpired").(bool); expired {
				return response.Unauthorized(c, "Session expired")
			}
			return response.FromError(c, err)
		}
		return c.Next()
	}
}

// CurrentSession returns the request's session, or nil when anonymous
func CurrentSession(c *fiber.Ctx) *domain.Session {
	session, _ := c.Locals(sessionKey).(*domain.Session)
	return session
}

func sessionToken(c *fiber.Ctx, cookieName string) string {
	if token := c.Cookies(cookieName); token != "" {
		return token
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
