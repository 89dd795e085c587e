package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/audire/casting-portal/internal/auth"
	"github.com/audire/casting-portal/internal/config"
	"github.com/audire/casting-portal/internal/model"
	"github.com/audire/casting-portal/internal/utils"
)

// AuthHandler issues and revokes sessions.
type AuthHandler struct {
	Env
	Cfg    config.AuthConfig
	Users  UserStore
	Tokens TokenStore
}

type loginReq struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type userPart struct {
	ID    uint64     `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

type authResp struct {
	User     userPart  `json:"user"`
	Access   tokenPart `json:"access"`
	Refresh  tokenPart `json:"refresh"`
	Redirect string    `json:"redirect"`
}

// LoginForm is where protected pages send anonymous callers. It describes
// the login form.
func (h *AuthHandler) LoginForm(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"action":       auth.LoginPath,
		"fields":       []string{"email", "password"},
		"registration": "/registration",
	})
}

// Login verifies the password and returns a new token pair. The access
// token is also set as the session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		return h.storageError(c, err, "get user by email")
	}
	hash := ""
	if u != nil {
		hash = u.PasswordHash
	}
	if !utils.VerifyPassword(hash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	return h.issue(c, u, http.StatusOK)
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := requestCtx(c)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return h.storageError(c, err, "revoke refresh")
	}

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return h.storageError(c, err, "get user")
	}
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	return h.issue(c, u, http.StatusOK)
}

// Logout revokes the presented refresh token, or every refresh token of the
// logged-in caller, and clears the session cookie.
func (h *AuthHandler) Logout(c echo.Context, p auth.Principal) error {
	var req refreshReq
	_ = c.Bind(&req)

	ctx, cancel := requestCtx(c)
	defer cancel()

	if raw := strings.TrimSpace(req.RefreshToken); raw != "" {
		if err := h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw)); err != nil {
			return h.storageError(c, err, "revoke refresh")
		}
	}
	if p.UserID != 0 {
		if err := h.Tokens.RevokeAllForUser(ctx, p.UserID); err != nil {
			return h.storageError(c, err, "revoke all refresh")
		}
	}

	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return notice(c, http.StatusOK, LevelSuccess, "logged out", "/", nil)
}

func (h *AuthHandler) issue(c echo.Context, u *model.User, status int) error {
	p := auth.Principal{UserID: u.Key.ID(), Role: u.Role, Name: u.FullName(), Email: u.Email}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, p, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}

	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Tokens.StoreRefresh(ctx, p.UserID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return h.storageError(c, err, "store refresh")
	}

	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookie,
		Value:    access.Token,
		Path:     "/",
		Expires:  access.Exp,
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(status, authResp{
		User:     userPart{ID: p.UserID, Name: p.Name, Email: p.Email, Role: p.Role},
		Access:   tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh:  tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
		Redirect: "/",
	})
}
