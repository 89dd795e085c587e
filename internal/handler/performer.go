package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/audire/casting-portal/internal/auth"
	"github.com/audire/casting-portal/internal/metrics"
	"github.com/audire/casting-portal/internal/model"
	"github.com/audire/casting-portal/internal/queue"
	"github.com/audire/casting-portal/internal/repository"
	"github.com/audire/casting-portal/internal/service"
)

const (
	msgAlreadyApplied  = "you have already applied to this casting"
	msgProfileRequired = "complete your profile before applying"
)

// PerformerHandler serves the performer area.
type PerformerHandler struct {
	Env
	Castings     CastingStore
	Performers   PerformerStore
	Applications ApplicationStore
	Events       service.Events
}

// ReviewApplication shows the casting and the caller's profile before they
// confirm. Performers who already applied are sent to their applications.
func (h *PerformerHandler) ReviewApplication(c echo.Context, p auth.Principal) error {
	castingID, ok := idParam(c, "id")
	if !ok {
		return badID(c, "id")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	perf, err := h.Performers.GetByUserID(ctx, p.UserID)
	if err != nil {
		return h.storageError(c, err, "get performer")
	}
	if perf == nil {
		return notice(c, http.StatusConflict, LevelWarning, msgProfileRequired, "/", nil)
	}

	applied, err := h.Applications.HasApplied(ctx, perf.Key.ID(), castingID)
	if err != nil {
		return h.storageError(c, err, "check application")
	}
	if applied {
		return notice(c, http.StatusOK, LevelInfo, msgAlreadyApplied, "/performer/applications",
			echo.Map{"already_applied": true})
	}

	casting, err := h.Castings.GetByID(ctx, castingID)
	if err != nil {
		return h.storageError(c, err, "get casting")
	}
	if casting == nil {
		return notice(c, http.StatusNotFound, LevelError, "casting not found or removed", "/", nil)
	}
	withProductionTitle(casting)

	return c.JSON(http.StatusOK, echo.Map{
		"casting":          casting,
		"production_title": casting.ProductionTitle,
		"performer":        perf,
		"already_applied":  false,
	})
}

// Apply submits an application. A second submission for the same casting is
// reported with an informational notice, whether the lookup or the unique
// index catches it.
func (h *PerformerHandler) Apply(c echo.Context, p auth.Principal) error {
	castingID, ok := idParam(c, "id")
	if !ok {
		return badID(c, "id")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	perf, err := h.Performers.GetByUserID(ctx, p.UserID)
	if err != nil {
		return h.storageError(c, err, "get performer")
	}
	if perf == nil {
		return notice(c, http.StatusConflict, LevelError, "profile error: missing data", "/", nil)
	}

	applied, err := h.Applications.HasApplied(ctx, perf.Key.ID(), castingID)
	if err != nil {
		return h.storageError(c, err, "check application")
	}
	if applied {
		return h.duplicate(c)
	}

	casting, err := h.Castings.GetByID(ctx, castingID)
	if err != nil {
		return h.storageError(c, err, "get casting")
	}
	if casting == nil {
		return notice(c, http.StatusNotFound, LevelError, "casting not found or removed", "/", nil)
	}
	now := h.now()
	if !casting.Open(now) {
		return notice(c, http.StatusConflict, LevelWarning, "applications for this casting are closed", "/", nil)
	}

	app := &model.Application{
		SentAt:      now,
		Status:      model.StatusPending,
		PerformerID: perf.Key.ID(),
		CastingID:   castingID,
	}
	switch err := h.Applications.Save(ctx, app); {
	case errors.Is(err, repository.ErrAlreadyApplied):
		return h.duplicate(c)
	case errors.Is(err, repository.ErrMissingOwner):
		return notice(c, http.StatusNotFound, LevelError, "casting not found or removed", "/", nil)
	case err != nil:
		return h.storageError(c, err, "save application")
	}
	metrics.ApplicationsTotal.WithLabelValues("submitted").Inc()

	h.Events.ApplicationSubmitted(context.WithoutCancel(ctx), queue.ApplicationSubmittedEvent{
		ApplicationID: app.Key.ID(),
		PerformerID:   app.PerformerID,
		CastingID:     app.CastingID,
		CastingTitle:  casting.Title,
		SentAt:        app.SentAt.Format(time.RFC3339),
	})

	return notice(c, http.StatusCreated, LevelSuccess, "application sent, good luck!", "/performer/applications",
		echo.Map{"application": app})
}

func (h *PerformerHandler) duplicate(c echo.Context) error {
	metrics.ApplicationsTotal.WithLabelValues("duplicate").Inc()
	return notice(c, http.StatusOK, LevelInfo, msgAlreadyApplied, "/performer/applications", nil)
}

// ListApplications lists the caller's applications with their casting titles.
func (h *PerformerHandler) ListApplications(c echo.Context, p auth.Principal) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	perf, err := h.Performers.GetByUserID(ctx, p.UserID)
	if err != nil {
		return h.storageError(c, err, "get performer")
	}
	if perf == nil {
		return notice(c, http.StatusConflict, LevelWarning, msgProfileRequired, "/", nil)
	}

	apps, err := h.Applications.ListByPerformer(ctx, perf.Key.ID())
	if err != nil {
		return h.storageError(c, err, "list applications")
	}
	return c.JSON(http.StatusOK, echo.Map{"applications": nonNil(apps)})
}
