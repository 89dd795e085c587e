// Package handler implements the HTTP endpoints of the casting portal. Every
// endpoint answers JSON: the data a page would render, plus an optional
// notice and redirect target for browser clients.
package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/audire/casting-portal/internal/model"
	"github.com/audire/casting-portal/internal/repository"
)

const requestTimeout = 5 * time.Second

// Notice levels.
const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Notice is a one-off message shown to the user after an action.
type Notice struct {
	Message string `json:"message"`
	Level   string `json:"level"`
}

// Env is embedded by every handler.
type Env struct {
	Log zerolog.Logger
	Now func() time.Time
}

func (e Env) now() time.Time {
	if e.Now != nil {
		return e.Now().UTC()
	}
	return time.Now().UTC()
}

// storageError logs err and answers the generic 500.
func (e Env) storageError(c echo.Context, err error, op string) error {
	e.Log.Error().Err(err).
		Str("route", c.Path()).
		Str("op", op).
		Msg("storage error")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}

func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// notice answers {"notice":{...},"redirect":...} merged with extra fields.
func notice(c echo.Context, status int, level, msg, redirect string, extra echo.Map) error {
	body := echo.Map{"notice": Notice{Message: msg, Level: level}}
	if redirect != "" {
		body["redirect"] = redirect
	}
	for k, v := range extra {
		body[k] = v
	}
	return c.JSON(status, body)
}

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, echo.Map{"error": "operation not permitted"})
}

func notFound(c echo.Context, what string) error {
	return c.JSON(http.StatusNotFound, echo.Map{"error": what + " not found"})
}

// idParam reads a positive id from the query string or the form body.
func idParam(c echo.Context, name string) (uint64, bool) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		raw = strings.TrimSpace(c.FormValue(name))
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	return id, err == nil && id > 0
}

func badID(c echo.Context, name string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid " + name})
}

// withProductionTitle fills the fallback title for castings whose
// production row is gone.
func withProductionTitle(cs ...*model.Casting) {
	for _, c := range cs {
		if c != nil && c.ProductionTitle == "" {
			c.ProductionTitle = repository.UnknownProductionTitle
		}
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
