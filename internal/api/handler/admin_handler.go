package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskpanel/taskpanel/internal/core/domain"
	"github.com/taskpanel/taskpanel/internal/core/ports"
)

// AdminHandler serves the admin-only routes.
type AdminHandler struct {
	gateway ports.Gateway
}

func NewAdminHandler(gateway ports.Gateway) *AdminHandler {
	return &AdminHandler{gateway: gateway}
}

// Users lists every user without passwords.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Success      200  {array}   domain.User
// @Failure      403  {object}  errorResponse
// @Router       /users [get]
func (h *AdminHandler) Users(c echo.Context) error {
	res, err := h.gateway.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	setSource(c, res.Backend)
	users := res.Value
	if users == nil {
		users = []domain.User{}
	}
	return c.JSON(http.StatusOK, users)
}

// Probe checks the remote endpoint again and reports which backend will
// serve the next calls.
//
// @Summary      Probe the remote endpoint
// @Tags         admin
// @Produce      json
// @Success      200  {object}  probeResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/probe [post]
func (h *AdminHandler) Probe(c echo.Context) error {
	up := h.gateway.Probe(c.Request().Context())
	resp := probeResponse{Available: up, Backend: domain.BackendLocal}
	if up {
		resp.Backend = domain.BackendRemote
	}
	return c.JSON(http.StatusOK, resp)
}
