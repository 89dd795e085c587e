package router

import (
	"github.com/labstack/echo/v4"

	"github.com/audire/casting-portal/internal/handler"
	"github.com/audire/casting-portal/internal/middleware"
	"github.com/audire/casting-portal/internal/model"
)

// RegisterManager registers production and team management under /pm.
func RegisterManager(e *echo.Echo, h *handler.ManagerHandler) {
	g := e.Group("/pm")
	g.GET("/productions", middleware.Require(model.RoleProductionManager, h.ListProductions))
	g.POST("/productions", middleware.Require(model.RoleProductionManager, h.CreateProduction))
	g.POST("/team", middleware.Require(model.RoleProductionManager, h.AddTeamMember))
	g.DELETE("/team", middleware.Require(model.RoleProductionManager, h.RemoveTeamMember))
}
