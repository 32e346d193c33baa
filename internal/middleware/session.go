package middleware

import (
	"net/url"
	"strings"

	"agenda/internal/models"
	"agenda/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const sessionKey = "session"

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/login/"

// LoadSession validates the session cookie, when present, and stores the
// resulting session in the request locals. Invalid cookies are ignored.
func LoadSession(authService *services.AuthService, cookieName string, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cookieName)
		if token == "" {
			return c.Next()
		}

		session, err := authService.ValidateToken(token)
		if err != nil {
			logger.Debug("ignoring invalid session cookie", zap.String("path", c.Path()), zap.Error(err))
			return c.Next()
		}

		c.Locals(sessionKey, session)
		return c.Next()
	}
}

// AuthRequired redirects requests without a session to the login page,
// keeping the requested path in the "next" query parameter.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentSession(c); !ok {
			return c.Redirect(LoginURL(c.OriginalURL()), fiber.StatusFound)
		}
		return c.Next()
	}
}

// CurrentSession returns the session attached to the request, if any.
func CurrentSession(c *fiber.Ctx) (*models.Session, bool) {
	session, ok := c.Locals(sessionKey).(*models.Session)
	return session, ok && session != nil
}

// ClearSession detaches the session from the rest of the request.
func ClearSession(c *fiber.Ctx) {
	c.Locals(sessionKey, nil)
}

// LoginURL builds the login redirect for next. Slashes are left readable.
func LoginURL(next string) string {
	if next == "" {
		return LoginPath
	}
	return LoginPath + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// SafeNext returns next when it is a local path and "/" otherwise.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
