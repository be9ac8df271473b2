package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskpanel/taskpanel/internal/core/domain"
	"github.com/taskpanel/taskpanel/internal/core/ports"
	"github.com/taskpanel/taskpanel/internal/realtime"
)

// StreamHub hands out the per-user realtime streams.
type StreamHub interface {
	Attach(user domain.User) (*realtime.Stream, error)
	Get(userID int64) (*realtime.Stream, bool)
	Detach(userID int64)
}

type AuthHandler struct {
	sessions ports.SessionService
	jar      *CookieJar
	hub      StreamHub
	log      zerolog.Logger
}

func NewAuthHandler(sessions ports.SessionService, jar *CookieJar, hub StreamHub, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, jar: jar, hub: hub, log: log}
}

// Login authenticates a user, stores the session cookies and returns the token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	sess, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password, h.jar.Store(c))
	if err != nil {
		return err
	}
	if _, err := h.hub.Attach(sess.User); err != nil {
		h.log.Warn().Err(err).Int64("user_id", sess.User.ID).Msg("realtime stream unavailable")
	}
	return c.JSON(http.StatusOK, sessionResponse{Token: sess.Token, User: &sess.User})
}

// Register creates a new user account with the user role.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  sessionResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	user, err := h.sessions.Register(c.Request().Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sessionResponse{User: user})
}

// Logout clears the session cookies and redirects to the login page.
//
// @Summary      Logout
// @Tags         auth
// @Success      303
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	store := h.jar.Store(c)
	if sess, err := store.Load(); err == nil {
		h.hub.Detach(sess.User.ID)
	}
	h.sessions.Logout(store)
	return c.Redirect(http.StatusSeeOther, "/auth/login")
}

// Me returns the signed-in user.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{User: &user})
}
