package router

import (
	"github.com/labstack/echo/v4"

	"github.com/audire/casting-portal/internal/handler"
	"github.com/audire/casting-portal/internal/middleware"
	"github.com/audire/casting-portal/internal/model"
)

// RegisterDirector registers the casting director area under /cd. Routes
// that change castings purge the cached home listing on success.
func RegisterDirector(e *echo.Echo, h *handler.DirectorHandler, purge echo.MiddlewareFunc) {
	cd := func(fn middleware.ProtectedFunc) echo.HandlerFunc {
		return middleware.Require(model.RoleCastingDirector, fn)
	}

	g := e.Group("/cd")
	g.GET("/create-casting", cd(h.CreateForm))
	g.POST("/create-casting", cd(h.Create), purge)
	g.GET("/view-castings", cd(h.List))
	g.GET("/edit-casting", cd(h.EditForm))
	g.POST("/edit-casting", cd(h.Edit), purge)
	g.GET("/delete-casting", cd(h.Delete), purge)
	g.GET("/casting-applications", cd(h.CastingApplications))
	g.GET("/performer-cv", cd(h.PerformerCV))
}
