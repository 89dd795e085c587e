package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audire/casting-portal/internal/auth"
	"github.com/audire/casting-portal/internal/config"
	"github.com/audire/casting-portal/internal/model"
	"github.com/audire/casting-portal/internal/utils"
)

func newCtx(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequire_AllowsMatchingRole(t *testing.T) {
	c, rec := newCtx(httptest.NewRequest(http.MethodGet, "/cd/view-castings", nil))
	auth.Attach(c, auth.Principal{UserID: 3, Role: model.RoleCastingDirector})

	var got auth.Principal
	h := Require(model.RoleCastingDirector, func(c echo.Context, p auth.Principal) error {
		got = p
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(3), got.UserID)
}

func TestRequire_RedirectsAnonymous(t *testing.T) {
	c, rec := newCtx(httptest.NewRequest(http.MethodGet, "/performer/applications", nil))

	h := Require(model.RolePerformer, func(echo.Context, auth.Principal) error {
		t.Fatalf("should not reach handler")
		return nil
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}

func TestRequire_RedirectsWrongRole(t *testing.T) {
	c, rec := newCtx(httptest.NewRequest(http.MethodGet, "/cd/create-casting", nil))
	auth.Attach(c, auth.Principal{UserID: 9, Role: model.RolePerformer})

	h := Require(model.RoleCastingDirector, func(echo.Context, auth.Principal) error {
		t.Fatalf("should not reach handler")
		return nil
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestAuthenticate_BearerAndCookie(t *testing.T) {
	p := auth.Principal{UserID: 5, Role: model.RolePerformer, Name: "Mario Rossi"}
	tok, err := utils.NewAccessToken("k", p, 5)
	require.NoError(t, err)

	for name, setup := range map[string]func(*http.Request){
		"bearer": func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token) },
		"cookie": func(r *http.Request) { r.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: tok.Token}) },
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			setup(req)
			c, _ := newCtx(req)

			var seen auth.Principal
			var ok bool
			err := Authenticate("k")(func(c echo.Context) error {
				seen, ok = auth.From(c)
				return nil
			})(c)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, p, seen)
		})
	}
}

func TestAuthenticate_InvalidTokenStaysAnonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-jwt")
	c, _ := newCtx(req)

	called := false
	err := Authenticate("k")(func(c echo.Context) error {
		called = true
		_, ok := auth.From(c)
		assert.False(t, ok)
		return nil
	})(c)
	require.NoError(t, err)
	assert.True(t, called)
}

func TestAnonymous_RedirectsLoggedIn(t *testing.T) {
	c, rec := newCtx(httptest.NewRequest(http.MethodGet, "/registration", nil))
	auth.Attach(c, auth.Principal{UserID: 1, Role: model.RolePerformer})

	require.NoError(t, Anonymous(func(echo.Context) error {
		t.Fatalf("should not reach handler")
		return nil
	})(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
}

func TestBodyRecorder_StopsAtLimit(t *testing.T) {
	rec := &bodyRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK, limit: 8}
	_, _ = rec.Write([]byte("1234"))
	assert.False(t, rec.overflow)
	assert.Equal(t, "1234", rec.body.String())

	_, _ = rec.Write([]byte("56789"))
	assert.True(t, rec.overflow)
	assert.Zero(t, rec.body.Len())
}

func TestResponseCache_EntryKeyIncludesQuery(t *testing.T) {
	rc := NewResponseCache(config.CacheConfig{Prefix: "audire:cache"}, nil)
	keyFor := func(target string) string {
		c, _ := newCtx(httptest.NewRequest(http.MethodGet, target, nil))
		c.SetPath("/")
		return rc.entryKey(c)
	}

	home := keyFor("/")
	assert.True(t, strings.HasPrefix(home, "audire:cache:entry:"), home)
	assert.Equal(t, home, keyFor("/"))
	assert.NotEqual(t, home, keyFor("/?page=2"))
	assert.Equal(t, "audire:cache:index", rc.indexKey())
}

func TestLimiter_BucketKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c, _ := newCtx(req)

	l := NewLimiter(config.RateLimitConfig{Prefix: "rl"}, nil)
	assert.Equal(t, "rl:login:ip:10.0.0.1", l.bucketKey("login", c))

	auth.Attach(c, auth.Principal{UserID: 7, Role: model.RolePerformer})
	assert.Equal(t, "rl:apply:user:7", l.bucketKey("apply", c))
}

func TestLimiter_RefillRateAndDecision(t *testing.T) {
	l := NewLimiter(config.RateLimitConfig{RefillTokens: 1, RefillInterval: 4 * time.Second}, nil)
	assert.InDelta(t, 0.00025, l.refillRate(), 1e-12)

	d, err := decisionFrom([]int64{0, 0, 2500})
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 2500*time.Millisecond, d.RetryAfter)

	d, err = decisionFrom([]int64{1, 19, 0})
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 19, d.Remaining)

	_, err = decisionFrom([]int64{1})
	assert.ErrorIs(t, err, errBucketReply)
}

func TestDisabledMiddlewaresPassThrough(t *testing.T) {
	c, rec := newCtx(httptest.NewRequest(http.MethodGet, "/", nil))
	next := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }

	rc := NewResponseCache(config.CacheConfig{Enabled: true}, nil)
	require.NoError(t, rc.Listing()(next)(c))
	require.NoError(t, rc.PurgeOnSuccess()(next)(c))
	require.NoError(t, rc.Purge(context.Background()))
	require.NoError(t, NewLimiter(config.RateLimitConfig{Enabled: true}, nil).Guard("login")(next)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
