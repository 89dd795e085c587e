package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/audire/casting-portal/internal/auth"
	"github.com/audire/casting-portal/internal/model"
)

// PublicHandler serves the pages anyone can open.
type PublicHandler struct {
	Env
	Castings     CastingStore
	Performers   PerformerStore
	Applications ApplicationStore
}

// Home lists castings whose deadline is today or later, newest first.
func (h *PublicHandler) Home(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	castings, err := h.Castings.GetAllActive(ctx)
	if err != nil {
		return h.storageError(c, err, "list active castings")
	}
	withProductionTitle(castings...)
	return c.JSON(http.StatusOK, echo.Map{"castings": nonNil(castings)})
}

// CastingDetails shows one casting. Performers also learn whether they
// already applied.
func (h *PublicHandler) CastingDetails(c echo.Context, p auth.Principal) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badID(c, "id")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	casting, err := h.Castings.GetByID(ctx, id)
	if err != nil {
		return h.storageError(c, err, "get casting")
	}
	if casting == nil {
		return notFound(c, "casting")
	}
	withProductionTitle(casting)

	applied := false
	if p.Is(model.RolePerformer) {
		perf, err := h.Performers.GetByUserID(ctx, p.UserID)
		if err != nil {
			return h.storageError(c, err, "get performer")
		}
		if perf != nil {
			applied, err = h.Applications.HasApplied(ctx, perf.Key.ID(), id)
			if err != nil {
				return h.storageError(c, err, "check application")
			}
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"casting":          casting,
		"production_title": casting.ProductionTitle,
		"already_applied":  applied,
		"open":             casting.Open(h.now()),
	})
}
