// Package router registers the HTTP routes of the casting portal on echo.
package router

import (
	"context"
	"database/sql"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/audire/casting-portal/internal/config"
	"github.com/audire/casting-portal/internal/handler"
	"github.com/audire/casting-portal/internal/middleware"
	"github.com/audire/casting-portal/internal/repository"
	"github.com/audire/casting-portal/internal/service"
	"github.com/audire/casting-portal/internal/storage"
)

// Deps are the process-wide resources the routes are built from. Redis may
// be nil, which disables the response cache and the rate limiter.
type Deps struct {
	Cfg    *config.Config
	Log    zerolog.Logger
	DB     *sql.DB
	Redis  *redis.Client
	Photos *storage.PhotoStore
	Events service.Events
	Now    func() time.Time
}

// Setup installs the error handler, the global middleware chain and every
// route.
func Setup(e *echo.Echo, d Deps) {
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(d.Log)
	e.Use(
		echomw.RequestID(),
		echomw.Recover(),
		middleware.RequestLogger(d.Log),
		middleware.Authenticate(d.Cfg.Auth.JWTSecret),
	)

	env := handler.Env{Log: d.Log, Now: d.Now}

	users := repository.NewUserRepo(d.DB)
	performers := repository.NewPerformerRepo(d.DB)
	directors := repository.NewCastingDirectorRepo(d.DB)
	managers := repository.NewProductionManagerRepo(d.DB)
	productions := repository.NewProductionRepo(d.DB)
	teams := repository.NewTeamRepo(d.DB)
	castings := repository.NewCastingRepo(d.DB)
	applications := repository.NewApplicationRepo(d.DB)

	limiter := middleware.NewLimiter(d.Cfg.RateLimit, d.Redis)
	cache := middleware.NewResponseCache(d.Cfg.Cache, d.Redis)

	checks := map[string]handler.Pinger{"mysql": d.DB}
	if d.Redis != nil {
		rdb := d.Redis
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}
	RegisterRoutes(e, &handler.HealthHandler{Env: env, Checks: checks})

	if d.Photos != nil {
		e.Static("/uploads/photos", d.Photos.Dir())
	}

	RegisterPublic(e, &handler.PublicHandler{
		Env:          env,
		Castings:     castings,
		Performers:   performers,
		Applications: applications,
	}, cache.Listing())

	RegisterAuth(e,
		&handler.AuthHandler{Env: env, Cfg: d.Cfg.Auth, Users: users, Tokens: repository.NewTokenRepo(d.DB)},
		&handler.RegistrationHandler{
			Env: env,
			Accounts: &service.AccountService{
				DB:         d.DB,
				Users:      users,
				Performers: performers,
				Directors:  directors,
				Managers:   managers,
				Photos:     d.Photos,
				BcryptCost: d.Cfg.Auth.BcryptCost,
				Log:        d.Log,
				Now:        d.Now,
			},
			MaxPhotoBytes: d.Cfg.Upload.MaxPhotoBytes,
			MaxCVBytes:    d.Cfg.Upload.MaxCVBytes,
		},
		limiter)

	RegisterPerformer(e, &handler.PerformerHandler{
		Env:          env,
		Castings:     castings,
		Performers:   performers,
		Applications: applications,
		Events:       d.Events,
	}, limiter.Guard("apply"))

	RegisterDirector(e, &handler.DirectorHandler{
		Env:          env,
		Directors:    directors,
		Productions:  productions,
		Teams:        teams,
		Castings:     castings,
		Applications: applications,
		Performers:   performers,
		Events:       d.Events,
	}, cache.PurgeOnSuccess())

	RegisterManager(e, &handler.ManagerHandler{
		Env:         env,
		Managers:    managers,
		Productions: productions,
		Teams:       teams,
	})
}

// RegisterRoutes registers the operational endpoints: liveness, readiness
// and the Prometheus scrape target.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", h.Ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterPublic registers the pages anyone can open. Only the home listing
// is cached: casting details depend on the caller.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	e.GET("/", p.Home, cache)
	e.GET("/casting-details", middleware.Optional(p.CastingDetails))
}

// RegisterAuth registers sign-up, login, token refresh and logout. Sign-up
// and login draw from separate rate limit buckets.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, r *handler.RegistrationHandler, limiter *middleware.Limiter) {
	e.GET("/registration", middleware.Anonymous(r.Form))
	e.POST("/registration", middleware.Anonymous(r.Register), limiter.Guard("register"))
	e.GET("/login", middleware.Anonymous(a.LoginForm))
	e.POST("/login", middleware.Anonymous(a.Login), limiter.Guard("login"))
	e.POST("/refresh", a.Refresh)
	e.POST("/logout", middleware.Optional(a.Logout))
}
