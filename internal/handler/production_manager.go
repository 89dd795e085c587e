package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/audire/casting-portal/internal/auth"
	"github.com/audire/casting-portal/internal/model"
	"github.com/audire/casting-portal/internal/repository"
	"github.com/audire/casting-portal/internal/validation"
)

const productionsPage = "/pm/productions"

// ManagerHandler lets production managers create productions and staff them
// with casting directors.
type ManagerHandler struct {
	Env
	Managers    ManagerStore
	Productions ProductionStore
	Teams       TeamStore
}

type productionView struct {
	*model.Production
	Directors []uint64 `json:"director_ids"`
}

// ListProductions lists the caller's productions with their team.
func (h *ManagerHandler) ListProductions(c echo.Context, p auth.Principal) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	pm, err := h.Managers.GetByUserID(ctx, p.UserID)
	if err != nil {
		return h.storageError(c, err, "get manager")
	}
	if pm == nil {
		return notice(c, http.StatusConflict, LevelError, msgProfileNotFound, "/", nil)
	}
	prods, err := h.Productions.ListByManager(ctx, pm.Key.ID())
	if err != nil {
		return h.storageError(c, err, "list productions")
	}

	out := make([]productionView, 0, len(prods))
	for _, prod := range prods {
		ids, err := h.Teams.ListDirectors(ctx, prod.Key.ID())
		if err != nil {
			return h.storageError(c, err, "list team")
		}
		out = append(out, productionView{Production: prod, Directors: nonNil(ids)})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"productions": out,
		"types":       model.ProductionTypeOptions(),
	})
}

// CreateProduction adds a production owned by the caller.
func (h *ManagerHandler) CreateProduction(c echo.Context, p auth.Principal) error {
	var form validation.ProductionForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	title, typ, errs, err := validation.ValidateProduction(form)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		return unprocessable(c, errs)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	pm, err := h.Managers.GetByUserID(ctx, p.UserID)
	if err != nil {
		return h.storageError(c, err, "get manager")
	}
	if pm == nil {
		return notice(c, http.StatusConflict, LevelError, msgProfileNotFound, "/", nil)
	}

	prod := &model.Production{Title: title, Type: typ, CreatedAt: h.now(), ManagerID: pm.Key.ID()}
	if err := h.Productions.Save(ctx, prod); err != nil {
		return h.storageError(c, err, "save production")
	}
	return notice(c, http.StatusCreated, LevelSuccess, "production created", productionsPage,
		echo.Map{"production": prod})
}

// ownedProduction returns the production named by the "production" param
// when the caller manages it.
func (h *ManagerHandler) ownedProduction(ctx context.Context, p auth.Principal, id uint64) (*model.Production, error) {
	pm, err := h.Managers.GetByUserID(ctx, p.UserID)
	if err != nil || pm == nil {
		return nil, err
	}
	prod, err := h.Productions.GetByID(ctx, id)
	if err != nil || prod == nil || prod.ManagerID != pm.Key.ID() {
		return nil, err
	}
	return prod, nil
}

// AddTeamMember assigns a casting director to an owned production.
func (h *ManagerHandler) AddTeamMember(c echo.Context, p auth.Principal) error {
	prodID, ok := idParam(c, "production")
	if !ok {
		return badID(c, "production")
	}
	directorID, ok := idParam(c, "director")
	if !ok {
		return badID(c, "director")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	prod, err := h.ownedProduction(ctx, p, prodID)
	if err != nil {
		return h.storageError(c, err, "get production")
	}
	if prod == nil {
		return forbidden(c)
	}

	switch err := h.Teams.Add(ctx, directorID, prodID); {
	case errors.Is(err, repository.ErrMissingOwner):
		return notFound(c, "casting director")
	case err != nil:
		return h.storageError(c, err, "add team member")
	}
	return notice(c, http.StatusOK, LevelSuccess, "casting director added to "+prod.Title, productionsPage, nil)
}

// RemoveTeamMember takes a casting director off an owned production.
// Castings they already published stay.
func (h *ManagerHandler) RemoveTeamMember(c echo.Context, p auth.Principal) error {
	prodID, ok := idParam(c, "production")
	if !ok {
		return badID(c, "production")
	}
	directorID, ok := idParam(c, "director")
	if !ok {
		return badID(c, "director")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	prod, err := h.ownedProduction(ctx, p, prodID)
	if err != nil {
		return h.storageError(c, err, "get production")
	}
	if prod == nil {
		return forbidden(c)
	}

	removed, err := h.Teams.Remove(ctx, directorID, prodID)
	if err != nil {
		return h.storageError(c, err, "remove team member")
	}
	if !removed {
		return notFound(c, "team member")
	}
	return notice(c, http.StatusOK, LevelSuccess, "casting director removed from "+prod.Title, productionsPage, nil)
}
