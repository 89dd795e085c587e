package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/audire/casting-portal/internal/auth"
	"github.com/audire/casting-portal/internal/model"
	"github.com/audire/casting-portal/internal/queue"
	"github.com/audire/casting-portal/internal/repository"
	"github.com/audire/casting-portal/internal/validation"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func testEnv() Env {
	return Env{Log: zerolog.Nop(), Now: func() time.Time { return testNow }}
}

func newReq(method, target string, form url.Values) *http.Request {
	if form == nil {
		return httptest.NewRequest(method, target, nil)
	}
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func serve(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func noticeOf(t *testing.T, body map[string]any) (msg, level string) {
	t.Helper()
	n, ok := body["notice"].(map[string]any)
	require.True(t, ok, "no notice in %v", body)
	return n["message"].(string), n["level"].(string)
}

var (
	performerP = auth.Principal{UserID: 10, Role: model.RolePerformer, Name: "Anna Neri"}
	directorP  = auth.Principal{UserID: 20, Role: model.RoleCastingDirector, Name: "Carlo Blu"}
	managerP   = auth.Principal{UserID: 30, Role: model.RoleProductionManager, Name: "Paola Rosa"}
)

// ----- stores -----

type fakeCastings struct {
	m         map[uint64]*model.Casting
	nextID    uint64
	err       error
	deleteErr error
	saved     []*model.Casting
}

func newFakeCastings(cs ...*model.Casting) *fakeCastings {
	f := &fakeCastings{m: map[uint64]*model.Casting{}, nextID: 100}
	for _, c := range cs {
		f.m[c.Key.ID()] = c
	}
	return f
}

func (f *fakeCastings) Save(_ context.Context, c *model.Casting) error {
	if f.err != nil {
		return f.err
	}
	if c.Key.IsNew() {
		f.nextID++
		c.Key = model.Existing(f.nextID)
	}
	cp := *c
	f.m[c.Key.ID()] = &cp
	f.saved = append(f.saved, &cp)
	return nil
}

func (f *fakeCastings) GetByID(_ context.Context, id uint64) (*model.Casting, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.m[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCastings) Delete(_ context.Context, id uint64) (bool, error) {
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	_, ok := f.m[id]
	delete(f.m, id)
	return ok, nil
}

func (f *fakeCastings) ListByDirector(_ context.Context, directorID uint64) ([]*model.Casting, error) {
	var out []*model.Casting
	for _, c := range f.m {
		if c.DirectorID == directorID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, f.err
}

func (f *fakeCastings) GetAllActive(_ context.Context) ([]*model.Casting, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.Casting
	for _, c := range f.m {
		if !c.Deadline.Before(testNow.Truncate(24 * time.Hour)) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakePerformers struct {
	byUser map[uint64]*model.Performer
	cv     map[uint64][]byte
}

func (f *fakePerformers) GetByID(_ context.Context, id uint64) (*model.Performer, error) {
	for _, p := range f.byUser {
		if p.Key.ID() == id {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePerformers) GetByUserID(_ context.Context, userID uint64) (*model.Performer, error) {
	return f.byUser[userID], nil
}

func (f *fakePerformers) GetCV(_ context.Context, id uint64) ([]byte, string, error) {
	data, ok := f.cv[id]
	if !ok {
		return nil, "", nil
	}
	return data, "application/pdf", nil
}

type fakeDirectors map[uint64]*model.CastingDirector

func (f fakeDirectors) GetByUserID(_ context.Context, userID uint64) (*model.CastingDirector, error) {
	return f[userID], nil
}

type fakeManagers map[uint64]*model.ProductionManager

func (f fakeManagers) GetByUserID(_ context.Context, userID uint64) (*model.ProductionManager, error) {
	return f[userID], nil
}

type fakeApplications struct {
	list    []*model.Application
	saveErr error
	nextID  uint64
}

func (f *fakeApplications) Save(_ context.Context, a *model.Application) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.nextID++
	a.Key = model.Existing(f.nextID)
	f.list = append(f.list, a)
	return nil
}

func (f *fakeApplications) ListByPerformer(_ context.Context, performerID uint64) ([]*model.Application, error) {
	var out []*model.Application
	for _, a := range f.list {
		if a.PerformerID == performerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeApplications) ListByCasting(_ context.Context, castingID uint64) ([]*model.Application, error) {
	var out []*model.Application
	for _, a := range f.list {
		if a.CastingID == castingID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeApplications) HasApplied(_ context.Context, performerID, castingID uint64) (bool, error) {
	for _, a := range f.list {
		if a.PerformerID == performerID && a.CastingID == castingID {
			return true, nil
		}
	}
	return false, nil
}

type fakeTeams map[[2]uint64]bool

func (f fakeTeams) Add(_ context.Context, d, p uint64) error {
	if d == 404 {
		return repository.ErrMissingOwner
	}
	f[[2]uint64{d, p}] = true
	return nil
}

func (f fakeTeams) Remove(_ context.Context, d, p uint64) (bool, error) {
	ok := f[[2]uint64{d, p}]
	delete(f, [2]uint64{d, p})
	return ok, nil
}

func (f fakeTeams) IsMember(_ context.Context, d, p uint64) (bool, error) {
	return f[[2]uint64{d, p}], nil
}

func (f fakeTeams) ListDirectors(_ context.Context, p uint64) ([]uint64, error) {
	var out []uint64
	for k := range f {
		if k[1] == p {
			out = append(out, k[0])
		}
	}
	return out, nil
}

type fakeProductions struct {
	m      map[uint64]*model.Production
	nextID uint64
}

func (f *fakeProductions) Save(_ context.Context, p *model.Production) error {
	f.nextID++
	p.Key = model.Existing(f.nextID)
	f.m[f.nextID] = p
	return nil
}

func (f *fakeProductions) GetByID(_ context.Context, id uint64) (*model.Production, error) {
	return f.m[id], nil
}

func (f *fakeProductions) ListByManager(_ context.Context, managerID uint64) ([]*model.Production, error) {
	var out []*model.Production
	for _, p := range f.m {
		if p.ManagerID == managerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductions) ListByDirector(_ context.Context, _ uint64) ([]*model.Production, error) {
	var out []*model.Production
	for _, p := range f.m {
		out = append(out, p)
	}
	return out, nil
}

type fakeEvents struct {
	submitted []queue.ApplicationSubmittedEvent
	published []queue.CastingPublishedEvent
}

func (f *fakeEvents) ApplicationSubmitted(_ context.Context, ev queue.ApplicationSubmittedEvent) {
	f.submitted = append(f.submitted, ev)
}

func (f *fakeEvents) CastingPublished(_ context.Context, ev queue.CastingPublishedEvent) {
	f.published = append(f.published, ev)
}

type fakeRegistrar struct {
	fn func(ctx context.Context, reg *validation.Registration) (*model.User, error)
}

func (f *fakeRegistrar) Register(ctx context.Context, reg *validation.Registration) (*model.User, error) {
	return f.fn(ctx, reg)
}

type fakeUsers map[string]*model.User

func (f fakeUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	for _, u := range f {
		if u.Key.ID() == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return f[email], nil
}

type fakeTokens struct {
	stored  map[string]uint64
	revoked []string
	allFor  []uint64
}

func (f *fakeTokens) StoreRefresh(_ context.Context, userID uint64, hash string, _ time.Time) error {
	if f.stored == nil {
		f.stored = map[string]uint64{}
	}
	f.stored[hash] = userID
	return nil
}

func (f *fakeTokens) ValidateRefresh(_ context.Context, hash string) (uint64, error) {
	id, ok := f.stored[hash]
	if !ok {
		return 0, repository.ErrTokenInvalid
	}
	return id, nil
}

func (f *fakeTokens) RevokeByHash(_ context.Context, hash string) error {
	delete(f.stored, hash)
	f.revoked = append(f.revoked, hash)
	return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	f.allFor = append(f.allFor, userID)
	return nil
}
