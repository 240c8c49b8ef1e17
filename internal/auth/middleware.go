package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kamaudev/dukashop/internal/models"
)

const (
	ContextUserID = "userID"
	ContextRole   = "role"
)

// RequireAuth checks the Authorization bearer header and puts the caller's
// id and role on the echo context.
func RequireAuth(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "malformed authorization header")
			}
			userID, role, err := ParseToken(secret, tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token: "+err.Error())
			}
			c.Set(ContextUserID, userID)
			c.Set(ContextRole, role)
			return next(c)
		}
	}
}

// RequireRoles gates a route to the given roles. Must run after RequireAuth.
func RequireRoles(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(ContextRole).(models.Role)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing role")
			}
			for _, r := range roles {
				if role == r {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
		}
	}
}

func UserID(c echo.Context) (uint, error) {
	id, ok := c.Get(ContextUserID).(uint)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "missing user")
	}
	return id, nil
}

func RoleOf(c echo.Context) models.Role {
	role, _ := c.Get(ContextRole).(models.Role)
	return role
}
