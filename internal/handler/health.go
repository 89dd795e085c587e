package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is anything readiness can check (*sql.DB, a redis client adapter).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// HealthHandler reports liveness and readiness.
type HealthHandler struct {
	Env
	// Checks maps a dependency name to its pinger. Nil entries are skipped.
	Checks map[string]Pinger
}

// Health is the liveness check: the process is serving.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Ready pings every dependency and answers 503 when one is down.
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	report := make(map[string]string, len(h.Checks))
	for name, p := range h.Checks {
		if p == nil {
			continue
		}
		if err := p.PingContext(ctx); err != nil {
			h.Log.Warn().Err(err).Str("dependency", name).Msg("readiness check failed")
			report[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		report[name] = "up"
	}
	return c.JSON(status, echo.Map{"status": http.StatusText(status), "checks": report})
}
