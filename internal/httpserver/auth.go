package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"storefront/internal/auth"
	"storefront/internal/events"
	"storefront/internal/hash"
	"storefront/internal/logging"
	"storefront/internal/models"
	"storefront/internal/repo"
	"storefront/internal/service"
)

type AuthHTTP struct {
	Repo     *repo.GormRepo
	Tokens   *auth.TokenService
	Orders   *service.OrderService
	Producer *events.Producer
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func createCookie(name, value, path string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHTTP) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicUserEvents, key, event); err != nil {
		c.Logger().Errorf("kafka publish error: %v", err)
	}
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req credentials
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password required")
	}

	if _, err := h.Repo.FindUserByEmail(ctx, req.Email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "user already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Error("register_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         "user",
		Active:       true,
	}
	if err := h.Repo.CreateUser(ctx, &user); err != nil {
		l.Error("register_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, user.Email, map[string]any{"type": "user_registered", "user": user.Email})
	l.Info("register_success", "user", user.Email)
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req credentials
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Repo.FindUserByEmail(ctx, req.Email)
	if err != nil || !hash.CheckPassword(user.PasswordHash, req.Password) {
		l.Warn("login_error", "status", 401)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	access, err := h.Tokens.SignAccessToken(user.Email, user.Role)
	if err != nil {
		l.Error("login_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	refresh, err := h.Tokens.SignRefreshToken(ctx, user.Email, user.Role)
	if err != nil {
		l.Error("login_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	c.SetCookie(createCookie("accessToken", access, "/", time.Now().Add(auth.AccessTTL)))
	c.SetCookie(createCookie("refreshToken", refresh, "/", time.Now().Add(auth.RefreshTTL)))

	l.Info("login_success", "user", user.Email)
	return c.JSON(http.StatusOK, map[string]string{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	email, err := auth.UserEmail(c)
	if err != nil {
		return err
	}

	if err := h.Repo.RevokeRefreshTokens(ctx, email); err != nil {
		l.Error("logout_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	c.SetCookie(createCookie("accessToken", "", "/", time.Unix(0, 0)))
	c.SetCookie(createCookie("refreshToken", "", "/", time.Unix(0, 0)))

	l.Info("logout_success", "user", email)
	return c.NoContent(http.StatusNoContent)
}

// DeleteProfile removes the account unless the user has order history;
// orders keep their user key, so the account behind it must stay.
func (h *AuthHTTP) DeleteProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.delete_profile")

	email, err := auth.UserEmail(c)
	if err != nil {
		return err
	}

	hasOrders, err := h.Orders.UserHasOrders(ctx, email)
	if err != nil {
		l.Error("delete_profile_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if hasOrders {
		return echo.NewHTTPError(http.StatusConflict, "cannot delete account with existing orders")
	}

	if err := h.Repo.DeleteUser(ctx, email); err != nil {
		l.Error("delete_profile_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, email, map[string]any{"type": "user_deleted", "user": email})
	l.Info("delete_profile_success", "user", email)
	return c.NoContent(http.StatusNoContent)
}
