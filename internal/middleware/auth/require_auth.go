package auth

import (
	"net/http"
	"strings"

	"github.com/Skotchmaster/social_feed/internal/logging"
	"github.com/Skotchmaster/social_feed/internal/service/token"
	"github.com/labstack/echo/v4"
)

const userIDKey = "userID"

type RequireAuth struct {
	Tokens *token.TokenService
}

func New(tokens *token.TokenService) *RequireAuth {
	return &RequireAuth{Tokens: tokens}
}

// Middleware is the gate in front of every identity-dependent route: it either
// rejects with 401 before the handler runs, or binds the caller's user id into
// the request context.
func (m *RequireAuth) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := c.Request().Header.Get(echo.HeaderAuthorization)
		if raw == "" {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token is missing"})
		}

		// clients send either the bare token or the Bearer scheme
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))

		userID, err := m.Tokens.Verify(raw)
		if err != nil {
			logging.FromContext(c.Request().Context()).Warn("auth_rejected", "path", c.Path(), "error", err)
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid or expired token"})
		}

		c.Set(userIDKey, userID)
		return next(c)
	}
}

// ActorID returns the user id bound by Middleware.
func ActorID(c echo.Context) (uint, error) {
	id, ok := c.Get(userIDKey).(uint)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "missing authenticated user")
	}
	return id, nil
}
