package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/taskpanel/taskpanel/internal/api/docs"
	"github.com/taskpanel/taskpanel/internal/api/handler"
	"github.com/taskpanel/taskpanel/internal/api/middleware"
	"github.com/taskpanel/taskpanel/internal/app"
	"github.com/taskpanel/taskpanel/internal/core/ports"
)

// PanelDeps are the collaborators wired into the panel router.
type PanelDeps struct {
	DashboardMaxAge time.Duration
	Sessions        ports.SessionService
	Gateway         ports.Gateway
	Board           *app.Board
	Hub             handler.StreamHub
	Jar             *handler.CookieJar
	ReadinessChecks []handler.Check
	Log             zerolog.Logger
}

// NewPanelRouter builds the Echo instance serving the task panel.
func NewPanelRouter(d PanelDeps) *echo.Echo {
	e := newEcho(d.Log)

	authHandler := handler.NewAuthHandler(d.Sessions, d.Jar, d.Hub, d.Log)
	taskHandler := handler.NewTaskHandler(d.Gateway, d.Board, d.Hub, d.Log)
	dashboardHandler := handler.NewDashboardHandler(d.Board, d.Hub, d.DashboardMaxAge)
	adminHandler := handler.NewAdminHandler(d.Gateway)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/logout", authHandler.Logout)

	// --- Session-protected routes ---
	protected := e.Group("", middleware.Session(d.Sessions, d.Jar.Store))
	protected.GET("/auth/me", authHandler.Me)
	protected.GET("/tasks", taskHandler.List)
	protected.POST("/tasks", taskHandler.Create)
	protected.PATCH("/tasks/:id", taskHandler.Update)
	protected.DELETE("/tasks/:id", taskHandler.Delete)
	protected.GET("/dashboard", dashboardHandler.Get)
	protected.GET("/activity", dashboardHandler.Activity)

	admin := protected.Group("", middleware.AdminOnly())
	admin.GET("/users", adminHandler.Users)
	admin.POST("/admin/probe", adminHandler.Probe)

	registerOps(e, d.ReadinessChecks)
	return e
}

// NewRecordsRouter builds the Echo instance serving the task API that backs
// the panel's remote endpoint.
func NewRecordsRouter(records ports.RecordService, jwtSecret string, checks []handler.Check, log zerolog.Logger) *echo.Echo {
	e := newEcho(log)

	recordsHandler := handler.NewRecordsHandler(records)

	// Login and register read and write users before a token exists.
	g := e.Group("", middleware.OptionalAuth(jwtSecret))
	g.GET("/users", recordsHandler.ListUsers)
	g.POST("/users", recordsHandler.CreateUser)
	g.GET("/tasks", recordsHandler.ListTasks)
	g.POST("/tasks", recordsHandler.CreateTask)
	g.PATCH("/tasks/:id", recordsHandler.UpdateTask)
	g.DELETE("/tasks/:id", recordsHandler.DeleteTask)

	registerOps(e, checks)
	return e
}

func newEcho(log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	return e
}

// registerOps mounts health probes, metrics and API docs.
func registerOps(e *echo.Echo, checks []handler.Check) {
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(checks...)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
