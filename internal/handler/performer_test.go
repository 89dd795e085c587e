package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audire/casting-portal/internal/model"
	"github.com/audire/casting-portal/internal/repository"
)

func openCasting(id uint64) *model.Casting {
	return &model.Casting{
		Key:             model.Existing(id),
		Title:           "Amleto",
		Location:        "Roma",
		Category:        model.CategoryAttoreAttrice,
		PublishedAt:     testNow.Add(-48 * time.Hour),
		Deadline:        model.EndOfDay(testNow.AddDate(0, 0, 10)),
		DirectorID:      2,
		ProductionID:    4,
		ProductionTitle: "Stagione 2026",
	}
}

func newPerformerHandler(apps *fakeApplications, castings *fakeCastings) (*PerformerHandler, *fakeEvents) {
	ev := &fakeEvents{}
	return &PerformerHandler{
		Env:      testEnv(),
		Castings: castings,
		Performers: &fakePerformers{byUser: map[uint64]*model.Performer{
			performerP.UserID: {Key: model.Existing(3), UserID: performerP.UserID, Gender: model.GenderFemale},
		}},
		Applications: apps,
		Events:       ev,
	}, ev
}

func TestApply_Submits(t *testing.T) {
	apps := &fakeApplications{}
	h, ev := newPerformerHandler(apps, newFakeCastings(openCasting(7)))

	c, rec := serve(newReq(http.MethodPost, "/performer/apply?id=7", nil))
	require.NoError(t, h.Apply(c, performerP))

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	_, level := noticeOf(t, body)
	assert.Equal(t, LevelSuccess, level)
	assert.Equal(t, "/performer/applications", body["redirect"])

	require.Len(t, apps.list, 1)
	a := apps.list[0]
	assert.Equal(t, model.StatusPending, a.Status)
	assert.Empty(t, a.Feedback)
	assert.Equal(t, testNow, a.SentAt)
	assert.Equal(t, uint64(3), a.PerformerID)

	require.Len(t, ev.submitted, 1)
	assert.Equal(t, "Amleto", ev.submitted[0].CastingTitle)
}

func TestApply_DuplicateIsInfo(t *testing.T) {
	apps := &fakeApplications{list: []*model.Application{{PerformerID: 3, CastingID: 7}}}
	h, ev := newPerformerHandler(apps, newFakeCastings(openCasting(7)))

	c, rec := serve(newReq(http.MethodGet, "/performer/apply?id=7", nil))
	require.NoError(t, h.Apply(c, performerP))

	assert.Equal(t, http.StatusOK, rec.Code)
	msg, level := noticeOf(t, decode(t, rec))
	assert.Equal(t, LevelInfo, level)
	assert.Equal(t, msgAlreadyApplied, msg)
	assert.Len(t, apps.list, 1)
	assert.Empty(t, ev.submitted)
}

func TestApply_UniqueIndexRaceIsInfo(t *testing.T) {
	apps := &fakeApplications{saveErr: repository.ErrAlreadyApplied}
	h, _ := newPerformerHandler(apps, newFakeCastings(openCasting(7)))

	c, rec := serve(newReq(http.MethodPost, "/performer/apply?id=7", nil))
	require.NoError(t, h.Apply(c, performerP))

	assert.Equal(t, http.StatusOK, rec.Code)
	_, level := noticeOf(t, decode(t, rec))
	assert.Equal(t, LevelInfo, level)
}

func TestApply_ClosedCasting(t *testing.T) {
	closed := openCasting(7)
	closed.Deadline = model.EndOfDay(testNow.AddDate(0, 0, -1))
	h, _ := newPerformerHandler(&fakeApplications{}, newFakeCastings(closed))

	c, rec := serve(newReq(http.MethodPost, "/performer/apply?id=7", nil))
	require.NoError(t, h.Apply(c, performerP))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestApply_UnknownCasting(t *testing.T) {
	h, _ := newPerformerHandler(&fakeApplications{}, newFakeCastings())

	c, rec := serve(newReq(http.MethodPost, "/performer/apply?id=99", nil))
	require.NoError(t, h.Apply(c, performerP))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApply_BadID(t *testing.T) {
	h, _ := newPerformerHandler(&fakeApplications{}, newFakeCastings())

	c, rec := serve(newReq(http.MethodPost, "/performer/apply?id=abc", nil))
	require.NoError(t, h.Apply(c, performerP))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApply_StorageError(t *testing.T) {
	castings := newFakeCastings(openCasting(7))
	castings.err = errors.New("connection refused")
	h, _ := newPerformerHandler(&fakeApplications{}, castings)

	c, rec := serve(newReq(http.MethodPost, "/performer/apply?id=7", nil))
	require.NoError(t, h.Apply(c, performerP))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"database error"}`, rec.Body.String())
}

func TestReviewApplication(t *testing.T) {
	c7 := openCasting(7)
	c7.ProductionTitle = ""
	h, _ := newPerformerHandler(&fakeApplications{}, newFakeCastings(c7))

	c, rec := serve(newReq(http.MethodGet, "/performer/review-application?id=7", nil))
	require.NoError(t, h.ReviewApplication(c, performerP))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, repository.UnknownProductionTitle, body["production_title"])
	assert.Equal(t, false, body["already_applied"])
	assert.NotNil(t, body["performer"])
}

func TestReviewApplication_AlreadyApplied(t *testing.T) {
	apps := &fakeApplications{list: []*model.Application{{PerformerID: 3, CastingID: 7}}}
	h, _ := newPerformerHandler(apps, newFakeCastings(openCasting(7)))

	c, rec := serve(newReq(http.MethodGet, "/performer/review-application?id=7", nil))
	require.NoError(t, h.ReviewApplication(c, performerP))

	body := decode(t, rec)
	_, level := noticeOf(t, body)
	assert.Equal(t, LevelInfo, level)
	assert.Equal(t, "/performer/applications", body["redirect"])
}

func TestReviewApplication_NoProfile(t *testing.T) {
	h, _ := newPerformerHandler(&fakeApplications{}, newFakeCastings(openCasting(7)))
	h.Performers = &fakePerformers{}

	c, rec := serve(newReq(http.MethodGet, "/performer/review-application?id=7", nil))
	require.NoError(t, h.ReviewApplication(c, performerP))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestApplications_ListsOwn(t *testing.T) {
	apps := &fakeApplications{list: []*model.Application{
		{PerformerID: 3, CastingID: 7, CastingTitle: "Amleto"},
		{PerformerID: 3, CastingID: 8, CastingTitle: model.RemovedCastingTitle},
		{PerformerID: 4, CastingID: 7},
	}}
	h, _ := newPerformerHandler(apps, newFakeCastings())

	c, rec := serve(newReq(http.MethodGet, "/performer/applications", nil))
	require.NoError(t, h.ListApplications(c, performerP))

	body := decode(t, rec)
	list := body["applications"].([]any)
	require.Len(t, list, 2)
	assert.Equal(t, model.RemovedCastingTitle, list[1].(map[string]any)["casting_title"])
}

func TestCastingDetails(t *testing.T) {
	apps := &fakeApplications{list: []*model.Application{{PerformerID: 3, CastingID: 7}}}
	h := &PublicHandler{
		Env:      testEnv(),
		Castings: newFakeCastings(openCasting(7)),
		Performers: &fakePerformers{byUser: map[uint64]*model.Performer{
			performerP.UserID: {Key: model.Existing(3), UserID: performerP.UserID},
		}},
		Applications: apps,
	}

	c, rec := serve(newReq(http.MethodGet, "/casting-details?id=7", nil))
	require.NoError(t, h.CastingDetails(c, performerP))
	body := decode(t, rec)
	assert.Equal(t, true, body["already_applied"])
	assert.Equal(t, "Stagione 2026", body["production_title"])

	c, rec = serve(newReq(http.MethodGet, "/casting-details?id=7", nil))
	require.NoError(t, h.CastingDetails(c, directorP))
	assert.Equal(t, false, decode(t, rec)["already_applied"])

	c, rec = serve(newReq(http.MethodGet, "/casting-details?id=70", nil))
	require.NoError(t, h.CastingDetails(c, performerP))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHome_ListsActive(t *testing.T) {
	past := openCasting(1)
	past.Deadline = model.EndOfDay(testNow.AddDate(0, 0, -2))
	today := openCasting(2)
	today.Deadline = model.EndOfDay(testNow)
	today.ProductionTitle = ""

	h := &PublicHandler{Env: testEnv(), Castings: newFakeCastings(past, today, openCasting(3))}
	c, rec := serve(newReq(http.MethodGet, "/", nil))
	require.NoError(t, h.Home(c))

	list := decode(t, rec)["castings"].([]any)
	require.Len(t, list, 2)
	for _, item := range list {
		assert.NotEmpty(t, item.(map[string]any)["production_title"])
	}
}
