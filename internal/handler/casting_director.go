package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/audire/casting-portal/internal/auth"
	"github.com/audire/casting-portal/internal/metrics"
	"github.com/audire/casting-portal/internal/model"
	"github.com/audire/casting-portal/internal/queue"
	"github.com/audire/casting-portal/internal/repository"
	"github.com/audire/casting-portal/internal/service"
	"github.com/audire/casting-portal/internal/validation"
)

const (
	msgProfileNotFound = "profile not found"
	msgNotTeamMember   = "select one of your productions"
	castingsPage       = "/cd/view-castings"
)

// DirectorHandler serves the casting director area.
type DirectorHandler struct {
	Env
	Directors    DirectorStore
	Productions  ProductionStore
	Teams        TeamStore
	Castings     CastingStore
	Applications ApplicationStore
	Performers   PerformerStore
	Events       service.Events
}

func (h *DirectorHandler) director(ctx context.Context, p auth.Principal) (*model.CastingDirector, error) {
	return h.Directors.GetByUserID(ctx, p.UserID)
}

// owned loads casting id and checks it belongs to the caller. A missing
// casting and someone else's casting are indistinguishable to the caller.
func (h *DirectorHandler) owned(ctx context.Context, p auth.Principal, id uint64) (*model.Casting, *model.CastingDirector, error) {
	cd, err := h.director(ctx, p)
	if err != nil || cd == nil {
		return nil, nil, err
	}
	casting, err := h.Castings.GetByID(ctx, id)
	if err != nil || casting == nil || casting.DirectorID != cd.Key.ID() {
		return nil, cd, err
	}
	return casting, cd, nil
}

// CreateForm lists the productions the caller can publish castings for.
func (h *DirectorHandler) CreateForm(c echo.Context, p auth.Principal) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	cd, err := h.director(ctx, p)
	if err != nil {
		return h.storageError(c, err, "get director")
	}
	if cd == nil {
		return notice(c, http.StatusConflict, LevelError, msgProfileNotFound, "/", nil)
	}
	prods, err := h.Productions.ListByDirector(ctx, cd.Key.ID())
	if err != nil {
		return h.storageError(c, err, "list productions")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"productions": nonNil(prods),
		"categories":  model.CategoryOptions(),
	})
}

// Create publishes a casting. The deadline must be at least a week away
// and the production must be one the caller is a team member of.
func (h *DirectorHandler) Create(c echo.Context, p auth.Principal) error {
	var form validation.CastingForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	cd, err := h.director(ctx, p)
	if err != nil {
		return h.storageError(c, err, "get director")
	}
	if cd == nil {
		return notice(c, http.StatusConflict, LevelError, msgProfileNotFound, "/", nil)
	}

	now := h.now()
	in, errs, err := validation.ValidateNewCasting(form, now)
	if err != nil {
		return err
	}
	if in.ProductionID != 0 {
		member, err := h.Teams.IsMember(ctx, cd.Key.ID(), in.ProductionID)
		if err != nil {
			return h.storageError(c, err, "check team")
		}
		if !member {
			errs = append(errs, msgNotTeamMember)
		}
	}
	if len(errs) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": errs, "form": form})
	}

	casting := &model.Casting{DirectorID: cd.Key.ID(), PublishedAt: now}
	in.Apply(casting)
	if err := h.Castings.Save(ctx, casting); err != nil {
		return h.storageError(c, err, "save casting")
	}
	metrics.CastingsPublishedTotal.WithLabelValues(casting.Category.Label()).Inc()

	h.Events.CastingPublished(context.WithoutCancel(ctx), queue.CastingPublishedEvent{
		CastingID:    casting.Key.ID(),
		DirectorID:   casting.DirectorID,
		ProductionID: casting.ProductionID,
		Title:        casting.Title,
		Category:     casting.Category.Label(),
		Deadline:     casting.Deadline.Format(time.RFC3339),
		PublishedAt:  casting.PublishedAt.Format(time.RFC3339),
	})

	return notice(c, http.StatusCreated, LevelSuccess, "casting published", castingsPage,
		echo.Map{"casting": casting})
}

// List returns the caller's castings with their production titles.
func (h *DirectorHandler) List(c echo.Context, p auth.Principal) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	cd, err := h.director(ctx, p)
	if err != nil {
		return h.storageError(c, err, "get director")
	}
	if cd == nil {
		return notice(c, http.StatusConflict, LevelError, msgProfileNotFound, "/", nil)
	}
	castings, err := h.Castings.ListByDirector(ctx, cd.Key.ID())
	if err != nil {
		return h.storageError(c, err, "list castings")
	}
	withProductionTitle(castings...)
	return c.JSON(http.StatusOK, echo.Map{"castings": nonNil(castings)})
}

// EditForm returns an owned casting and the caller's productions.
func (h *DirectorHandler) EditForm(c echo.Context, p auth.Principal) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badID(c, "id")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	casting, cd, err := h.owned(ctx, p, id)
	if err != nil {
		return h.storageError(c, err, "get casting")
	}
	if casting == nil {
		return forbidden(c)
	}
	prods, err := h.Productions.ListByDirector(ctx, cd.Key.ID())
	if err != nil {
		return h.storageError(c, err, "list productions")
	}
	withProductionTitle(casting)
	return c.JSON(http.StatusOK, echo.Map{
		"casting":     casting,
		"productions": nonNil(prods),
		"categories":  model.CategoryOptions(),
	})
}

// Edit updates an owned casting. Unlike creation, the new deadline only
// has to be today or later. Validation errors come back with the submitted
// values applied to the casting so the form can be shown again.
func (h *DirectorHandler) Edit(c echo.Context, p auth.Principal) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badID(c, "id")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	casting, cd, err := h.owned(ctx, p, id)
	if err != nil {
		return h.storageError(c, err, "get casting")
	}
	if casting == nil {
		return forbidden(c)
	}

	var form validation.CastingForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	in, errs, err := validation.ValidateCastingUpdate(form, h.now())
	if err != nil {
		return err
	}
	if in.ProductionID != 0 && in.ProductionID != casting.ProductionID {
		member, err := h.Teams.IsMember(ctx, cd.Key.ID(), in.ProductionID)
		if err != nil {
			return h.storageError(c, err, "check team")
		}
		if !member {
			errs = append(errs, msgNotTeamMember)
		}
	}
	if len(errs) > 0 {
		draft := *casting
		in.Apply(&draft)
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": errs, "casting": draft})
	}

	in.Apply(casting)
	if err := h.Castings.Save(ctx, casting); err != nil {
		return h.storageError(c, err, "update casting")
	}
	return notice(c, http.StatusOK, LevelSuccess, "casting updated", castingsPage,
		echo.Map{"casting": casting})
}

// Delete removes an owned casting. Castings that already received
// applications cannot be removed.
func (h *DirectorHandler) Delete(c echo.Context, p auth.Principal) error {
	id, ok := idParam(c, "id")
	if !ok {
		return notice(c, http.StatusBadRequest, LevelError, "invalid casting id", castingsPage, nil)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	casting, _, err := h.owned(ctx, p, id)
	if err != nil {
		return h.storageError(c, err, "get casting")
	}
	if casting == nil {
		return forbidden(c)
	}

	removed, err := h.Castings.Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrHasDependents):
		return notice(c, http.StatusConflict, LevelError,
			"cannot delete: the casting has applications", castingsPage, nil)
	case err != nil:
		h.Log.Error().Err(err).Uint64("casting_id", id).Msg("delete casting")
		return notice(c, http.StatusInternalServerError, LevelError, "could not delete the casting", castingsPage, nil)
	case !removed:
		return notice(c, http.StatusOK, LevelError, "could not delete the casting", castingsPage, nil)
	}
	return notice(c, http.StatusOK, LevelSuccess, "casting deleted", castingsPage, nil)
}

// CastingApplications lists the applications an owned casting received.
func (h *DirectorHandler) CastingApplications(c echo.Context, p auth.Principal) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badID(c, "id")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	casting, _, err := h.owned(ctx, p, id)
	if err != nil {
		return h.storageError(c, err, "get casting")
	}
	if casting == nil {
		return forbidden(c)
	}
	apps, err := h.Applications.ListByCasting(ctx, id)
	if err != nil {
		return h.storageError(c, err, "list applications")
	}
	withProductionTitle(casting)
	return c.JSON(http.StatusOK, echo.Map{"casting": casting, "applications": nonNil(apps)})
}

// PerformerCV streams the CV of a performer who applied to one of the
// caller's castings.
func (h *DirectorHandler) PerformerCV(c echo.Context, p auth.Principal) error {
	castingID, ok := idParam(c, "id")
	if !ok {
		return badID(c, "id")
	}
	performerID, ok := idParam(c, "performer")
	if !ok {
		return badID(c, "performer")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	casting, _, err := h.owned(ctx, p, castingID)
	if err != nil {
		return h.storageError(c, err, "get casting")
	}
	if casting == nil {
		return forbidden(c)
	}
	applied, err := h.Applications.HasApplied(ctx, performerID, castingID)
	if err != nil {
		return h.storageError(c, err, "check application")
	}
	if !applied {
		return forbidden(c)
	}

	data, mime, err := h.Performers.GetCV(ctx, performerID)
	if err != nil {
		return h.storageError(c, err, "get cv")
	}
	if len(data) == 0 {
		return notFound(c, "CV")
	}
	if mime == "" {
		mime = "application/pdf"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`inline; filename="cv-`+strconv.FormatUint(performerID, 10)+`.pdf"`)
	return c.Blob(http.StatusOK, mime, data)
}
