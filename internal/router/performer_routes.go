package router

import (
	"github.com/labstack/echo/v4"

	"github.com/audire/casting-portal/internal/handler"
	"github.com/audire/casting-portal/internal/middleware"
	"github.com/audire/casting-portal/internal/model"
)

// RegisterPerformer registers the performer area under /performer. Every
// route requires the Performer role; submitting an application is rate
// limited.
func RegisterPerformer(e *echo.Echo, h *handler.PerformerHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/performer")
	g.GET("/review-application", middleware.Require(model.RolePerformer, h.ReviewApplication))
	// the casting page links here, so GET submits too
	g.GET("/apply", middleware.Require(model.RolePerformer, h.Apply), limit)
	g.POST("/apply", middleware.Require(model.RolePerformer, h.Apply), limit)
	g.GET("/applications", middleware.Require(model.RolePerformer, h.ListApplications))
}
