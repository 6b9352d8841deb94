package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Resolver maps a session token to the id of the user that owns it.
type Resolver interface {
	Resolve(ctx context.Context, token string) (int64, error)
}

// Middleware returns an Echo middleware that resolves "Bearer <token>"
// through the session registry and sets "user_id" and "token" in the
// Echo context.
func Middleware(sessions Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			userID, err := sessions.Resolve(c.Request().Context(), token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			c.Set("user_id", userID)
			c.Set("token", token)
			return next(c)
		}
	}
}

// GetUserID extracts the authenticated user ID from the Echo context.
func GetUserID(c echo.Context) int64 {
	return c.Get("user_id").(int64)
}

// GetToken extracts the raw session token from the Echo context.
func GetToken(c echo.Context) string {
	token, _ := c.Get("token").(string)
	return token
}
