package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/audire/casting-portal/internal/auth"
	"github.com/audire/casting-portal/internal/model"
)

// ProtectedFunc is a handler that needs the authenticated caller.
type ProtectedFunc func(c echo.Context, p auth.Principal) error

// Require gates fn on the caller holding role. Anonymous callers and callers
// with another role are redirected to the login page with 303 See Other.
func Require(role model.Role, fn ProtectedFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, ok := auth.From(c)
		if !ok || !p.Is(role) {
			return c.Redirect(http.StatusSeeOther, auth.LoginPath)
		}
		return fn(c, p)
	}
}

// Optional passes the caller, or a zero Principal for anonymous requests.
func Optional(fn ProtectedFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, _ := auth.From(c)
		return fn(c, p)
	}
}

// Anonymous only lets unauthenticated callers through; logged-in users are
// sent to the home page.
func Anonymous(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := auth.From(c); ok {
			return c.Redirect(http.StatusSeeOther, "/")
		}
		return next(c)
	}
}
