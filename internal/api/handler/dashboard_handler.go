package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskpanel/taskpanel/internal/app"
	"github.com/taskpanel/taskpanel/internal/core/domain"
)

type DashboardHandler struct {
	board  *app.Board
	hub    StreamHub
	maxAge time.Duration
}

func NewDashboardHandler(board *app.Board, hub StreamHub, maxAge time.Duration) *DashboardHandler {
	return &DashboardHandler{board: board, hub: hub, maxAge: maxAge}
}

// Get returns the caller's dashboard, refreshing the board when it is older
// than the configured age.
//
// @Summary      Dashboard
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  app.Dashboard
// @Failure      401  {object}  errorResponse
// @Router       /dashboard [get]
func (h *DashboardHandler) Get(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	snap := h.board.Fresh(c.Request().Context(), h.maxAge)
	activity, connected := h.activity(c, user)

	setSource(c, snap.Backend)
	return c.JSON(http.StatusOK, app.BuildDashboard(snap, user, activity, connected))
}

// Activity returns the caller's activity feed, newest first.
//
// @Summary      Activity feed
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  activityResponse
// @Router       /activity [get]
func (h *DashboardHandler) Activity(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	items, connected := h.activity(c, user)
	return c.JSON(http.StatusOK, activityResponse{Connected: connected, Items: items})
}

func (h *DashboardHandler) activity(c echo.Context, user domain.User) ([]domain.ActivityEvent, bool) {
	stream, err := streamFor(h.hub, c, user)
	if err != nil || stream == nil {
		return []domain.ActivityEvent{}, false
	}
	return stream.Feed.Items(), stream.Channel.Connected()
}
