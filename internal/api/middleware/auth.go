package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskpanel/taskpanel/internal/core/domain"
	"github.com/taskpanel/taskpanel/internal/pkg/token"
	"github.com/taskpanel/taskpanel/internal/remote"
)

// Context keys set for authenticated requests.
const (
	CtxUser   = "user"
	CtxUserID = "user_id"
	CtxRole   = "role"
	CtxToken  = "token"
)

// TokenCookie carries the session token for browser clients.
const TokenCookie = "token"

// Auth validates the session token from the Authorization header or the
// token cookie and injects the identity into context.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return auth(jwtSecret, false)
}

// OptionalAuth is Auth for routes that also serve anonymous callers. A token
// that is present must still be valid.
func OptionalAuth(jwtSecret string) echo.MiddlewareFunc {
	return auth(jwtSecret, true)
}

func auth(jwtSecret string, optional bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := extractToken(c)
			if err != nil {
				return err
			}
			if raw == "" {
				if optional {
					return next(c)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			claims, err := token.Parse(jwtSecret, raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			setIdentity(c, claims.User(), raw)
			return next(c)
		}
	}
}

// extractToken prefers the Authorization header and falls back to the token
// cookie. A malformed header is rejected rather than ignored.
func extractToken(c echo.Context) (string, error) {
	if authHeader := c.Request().Header.Get(echo.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
		}
		return parts[1], nil
	}
	if ck, err := c.Cookie(TokenCookie); err == nil {
		return ck.Value, nil
	}
	return "", nil
}

// setIdentity stores user in context and forwards the token to remote calls
// made with the request context.
func setIdentity(c echo.Context, user domain.User, raw string) {
	c.Set(CtxUser, user)
	c.Set(CtxUserID, user.ID)
	c.Set(CtxRole, user.Role)
	c.Set(CtxToken, raw)
	req := c.Request()
	c.SetRequest(req.WithContext(remote.WithToken(req.Context(), raw)))
}
