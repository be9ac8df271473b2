package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskpanel/taskpanel/internal/core/domain"
	"github.com/taskpanel/taskpanel/internal/core/ports"
)

// CtxCookieSession is true when the identity came from the session cookies
// rather than a bearer token.
const CtxCookieSession = "cookie_session"

// SessionRestorer reads a session back from its store and verifies bearer
// tokens under the same role rules.
type SessionRestorer interface {
	Restore(store ports.SessionStore) (*ports.Session, error)
	Verify(raw string) (*domain.User, error)
}

// Session authenticates panel requests. API clients may send a bearer
// token; browsers are restored from the session cookies, which are cleared
// when they no longer verify.
func Session(restorer SessionRestorer, stores func(echo.Context) ports.SessionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) != "" {
				raw, err := extractToken(c)
				if err != nil {
					return err
				}
				user, err := restorer.Verify(raw)
				if err != nil {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				setIdentity(c, *user, raw)
				c.Set(CtxCookieSession, false)
				return next(c)
			}

			sess, err := restorer.Restore(stores(c))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "session expired or invalid")
			}
			setIdentity(c, sess.User, sess.Token)
			c.Set(CtxCookieSession, true)
			return next(c)
		}
	}
}
