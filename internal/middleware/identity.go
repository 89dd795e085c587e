package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/audire/casting-portal/internal/auth"
)

// subject returns the caller's user id for rate-limit and log keys, or
// "anon" when no principal is attached.
func subject(c echo.Context) string {
	if p, ok := auth.From(c); ok {
		return strconv.FormatUint(p.UserID, 10)
	}
	return "anon"
}
