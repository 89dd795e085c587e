package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/audire/casting-portal/internal/repository"
)

// NewHTTPErrorHandler maps errors that escape a handler to JSON. Raw error
// text is only echoed for *echo.HTTPError; everything else is logged.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := "internal server error"

		var he *echo.HTTPError
		switch {
		case errors.As(err, &he):
			status = he.Code
			msg = fmt.Sprint(he.Message)
			if he.Internal != nil {
				log.Debug().Err(he.Internal).Int("status", status).Msg("http error")
			}
		case errors.Is(err, repository.ErrInvalidEntity):
			status = http.StatusUnprocessableEntity
			msg = "invalid data"
		default:
			log.Error().Err(err).
				Str("method", c.Request().Method).
				Str("uri", c.Request().RequestURI).
				Msg("unhandled error")
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, echo.Map{"error": msg})
		}
		if werr != nil {
			log.Error().Err(werr).Msg("write error response")
		}
	}
}
