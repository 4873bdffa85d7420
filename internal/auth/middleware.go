package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireLogin resolves the caller's identity from the accessToken
// cookie and stores the email and role in the request context. Handlers
// pass the email down to the service layer as a plain argument.
func (t *TokenService) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie("accessToken")
		if err != nil || cookie.Value == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing auth cookie")
		}

		email, role, err := t.ValidateAccess(cookie.Value)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		c.Set("userEmail", email)
		c.Set("role", role)
		return next(c)
	}
}

func (t *TokenService) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return t.RequireLogin(func(c echo.Context) error {
		if role, _ := c.Get("role").(string); role != "admin" {
			return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
		}
		return next(c)
	})
}

// UserEmail returns the identity resolved by RequireLogin.
func UserEmail(c echo.Context) (string, error) {
	email, ok := c.Get("userEmail").(string)
	if !ok || email == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return email, nil
}
