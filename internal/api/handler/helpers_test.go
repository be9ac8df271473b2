package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskpanel/taskpanel/internal/api/middleware"
	"github.com/taskpanel/taskpanel/internal/core/domain"
	"github.com/taskpanel/taskpanel/internal/core/ports"
	"github.com/taskpanel/taskpanel/internal/realtime"
)

var (
	adminUser = domain.User{ID: 1, Email: "admin@example.com", Name: "Admin User", Role: domain.RoleAdmin}
	plainUser = domain.User{ID: 2, Email: "user@example.com", Name: "Regular User", Role: domain.RoleUser}
)

type stubGateway struct {
	listTasksFn  func(ctx context.Context, f domain.TaskFilter) (ports.Result[[]domain.Task], error)
	createTaskFn func(ctx context.Context, actor *domain.User, in ports.CreateTaskInput) (ports.Result[domain.Task], error)
	updateTaskFn func(ctx context.Context, id int64, p domain.TaskPatch) (ports.Result[domain.Task], error)
	deleteTaskFn func(ctx context.Context, id int64) (ports.DeleteResult, error)
	listUsersFn  func(ctx context.Context) (ports.Result[[]domain.User], error)
	probeFn      func(ctx context.Context) bool
}

func (s *stubGateway) Available() bool { return true }

func (s *stubGateway) Probe(ctx context.Context) bool { return s.probeFn(ctx) }

func (s *stubGateway) ListTasks(ctx context.Context, f domain.TaskFilter) (ports.Result[[]domain.Task], error) {
	return s.listTasksFn(ctx, f)
}

func (s *stubGateway) CreateTask(ctx context.Context, actor *domain.User, in ports.CreateTaskInput) (ports.Result[domain.Task], error) {
	return s.createTaskFn(ctx, actor, in)
}

func (s *stubGateway) UpdateTask(ctx context.Context, id int64, p domain.TaskPatch) (ports.Result[domain.Task], error) {
	return s.updateTaskFn(ctx, id, p)
}

func (s *stubGateway) DeleteTask(ctx context.Context, id int64) (ports.DeleteResult, error) {
	return s.deleteTaskFn(ctx, id)
}

func (s *stubGateway) ListUsers(ctx context.Context) (ports.Result[[]domain.User], error) {
	return s.listUsersFn(ctx)
}

func (s *stubGateway) Authenticate(context.Context, string, string) (ports.Result[domain.User], error) {
	return ports.Result[domain.User]{}, errors.New("not implemented")
}

func (s *stubGateway) RegisterUser(context.Context, string, string, string) (ports.Result[domain.User], error) {
	return ports.Result[domain.User]{}, errors.New("not implemented")
}

func newTestHub(t *testing.T) *realtime.Hub {
	t.Helper()
	d := realtime.NewDispatcher(2, zerolog.Nop())
	d.Start(t.Context())
	return realtime.NewHub(d, realtime.Options{Delay: 5 * time.Millisecond, Log: zerolog.Nop()}, 10)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// newCtx builds an echo context for method/target with an optional JSON
// body and signed-in user.
func newCtx(e *echo.Echo, method, target, body string, user *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(middleware.CtxUser, *user)
		c.Set(middleware.CtxRole, user.Role)
		c.Set(middleware.CtxCookieSession, true)
	}
	return c, rec
}

// newBearerCtx is newCtx for a caller authenticated by bearer token only.
func newBearerCtx(e *echo.Echo, method, target, body string, user *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := newCtx(e, method, target, body, user)
	c.Set(middleware.CtxCookieSession, false)
	return c, rec
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before timeout")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func cookieNamed(cookies []*http.Cookie, name string) *http.Cookie {
	for _, ck := range cookies {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}
