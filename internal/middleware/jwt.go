package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/audire/casting-portal/internal/auth"
	"github.com/audire/casting-portal/internal/utils"
)

// Authenticate resolves the caller from a Bearer access token or, failing
// that, from the session cookie, and attaches the principal to the context.
// Missing or invalid tokens leave the request anonymous; protected routes
// are gated by Require.
func Authenticate(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw := rawToken(c); raw != "" {
				if p, err := utils.ParseAccessToken(secret, raw); err == nil {
					auth.Attach(c, p)
				}
			}
			return next(c)
		}
	}
}

func rawToken(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if ck, err := c.Cookie(auth.SessionCookie); err == nil {
		return ck.Value
	}
	return ""
}
