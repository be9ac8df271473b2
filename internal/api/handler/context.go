package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskpanel/taskpanel/internal/api/middleware"
	"github.com/taskpanel/taskpanel/internal/core/domain"
	"github.com/taskpanel/taskpanel/internal/realtime"
)

// HeaderDataSource names the backend that served a gateway-backed response.
const HeaderDataSource = "X-Data-Source"

// ctxUser extracts the identity injected by the session middleware. A
// missing user means the route was mounted without it.
func ctxUser(c echo.Context) (domain.User, error) {
	user, ok := c.Get(middleware.CtxUser).(domain.User)
	if !ok || user.ID == 0 {
		return domain.User{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return user, nil
}

// streamFor returns the caller's realtime stream. Cookie sessions open one on
// demand and close it at logout; bearer callers only reuse an open one.
func streamFor(hub StreamHub, c echo.Context, user domain.User) (*realtime.Stream, error) {
	if cookie, _ := c.Get(middleware.CtxCookieSession).(bool); cookie {
		return hub.Attach(user)
	}
	stream, _ := hub.Get(user.ID)
	return stream, nil
}

func setSource(c echo.Context, b domain.Backend) {
	if b != "" {
		c.Response().Header().Set(HeaderDataSource, string(b))
	}
}

// bindValid binds the request body into req and runs the echo validator.
func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
