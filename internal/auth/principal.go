// Package auth defines the authenticated caller that handlers receive.
package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/audire/casting-portal/internal/model"
)

// Principal is the logged-in user a request acts for. It is decoded from the
// access token and handed to protected handlers as an explicit argument.
type Principal struct {
	UserID uint64     `json:"user_id"`
	Role   model.Role `json:"role"`
	Name   string     `json:"name"`
	Email  string     `json:"email"`
}

// Is reports whether the principal holds role r.
func (p Principal) Is(r model.Role) bool { return p.UserID != 0 && p.Role == r }

const contextKey = "auth.principal"

// Attach stores p on the request context.
func Attach(c echo.Context, p Principal) { c.Set(contextKey, p) }

// From returns the principal stored by Attach; ok is false for anonymous
// requests.
func From(c echo.Context) (Principal, bool) {
	p, ok := c.Get(contextKey).(Principal)
	return p, ok && p.UserID != 0
}

// SessionCookie carries the access token for browser clients.
const SessionCookie = "audire_session"

// LoginPath is where unauthenticated or unauthorized callers are sent.
const LoginPath = "/login"
