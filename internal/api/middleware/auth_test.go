package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskpanel/taskpanel/internal/core/domain"
	"github.com/taskpanel/taskpanel/internal/core/ports"
	"github.com/taskpanel/taskpanel/internal/pkg/token"
)

var alice = domain.User{ID: 7, Email: "alice@example.com", Name: "Alice", Role: domain.RoleAdmin}

func signed(t *testing.T, secret string) string {
	t.Helper()
	raw, err := token.Issue(secret, alice, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

// run executes mw around a handler that records whether it was reached and
// renders errors through echo's default handler.
func run(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, c, called
}

func TestAuthMiddleware_ValidBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, "secret"))

	rec, c, called := run(t, Auth("secret"), req)

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected next to be called with 200, got %d", rec.Code)
	}
	if c.Get(CtxUser) != alice {
		t.Fatalf("user not set: %+v", c.Get(CtxUser))
	}
	if c.Get(CtxRole) != domain.RoleAdmin || c.Get(CtxUserID) != int64(7) {
		t.Fatalf("role or user id not set")
	}
}

func TestAuthMiddleware_TokenCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: signed(t, "secret")})

	rec, _, called := run(t, Auth("secret"), req)

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected cookie token to authenticate, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Token abc",
		"bad token":      "Bearer not-a-token",
		"other key":      "Bearer " + signed(t, "other"),
	}
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec, _, called := run(t, Auth("secret"), req)
		if called || rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d (called=%v)", name, rec.Code, called)
		}
	}
}

func TestOptionalAuth(t *testing.T) {
	rec, c, called := run(t, OptionalAuth("secret"), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called || rec.Code != http.StatusOK || c.Get(CtxUser) != nil {
		t.Fatalf("anonymous request should pass without identity")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec, _, called = run(t, OptionalAuth("secret"), req)
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("invalid token must still be rejected, got %d", rec.Code)
	}
}

type stubRestorer struct {
	sess   *ports.Session
	err    error
	verify func(raw string) (*domain.User, error)
}

func (s stubRestorer) Restore(ports.SessionStore) (*ports.Session, error) { return s.sess, s.err }

func (s stubRestorer) Verify(raw string) (*domain.User, error) {
	if s.verify == nil {
		return nil, errors.New("verify not expected")
	}
	return s.verify(raw)
}

// verifyWith checks bearer tokens against secret and lets only allowed roles
// through.
func verifyWith(secret string, allowed ...string) func(string) (*domain.User, error) {
	return func(raw string) (*domain.User, error) {
		claims, err := token.Parse(secret, raw)
		if err != nil {
			return nil, err
		}
		user := claims.User()
		for _, role := range allowed {
			if user.Role == role {
				return &user, nil
			}
		}
		return nil, domain.ErrSessionInvalid
	}
}

func noStore(echo.Context) ports.SessionStore { return nil }

func TestSession_RestoresFromCookies(t *testing.T) {
	mw := Session(stubRestorer{sess: &ports.Session{Token: "tok", User: alice}}, noStore)

	rec, c, called := run(t, mw, httptest.NewRequest(http.MethodGet, "/", nil))

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected restored session, got %d", rec.Code)
	}
	if c.Get(CtxUser) != alice || c.Get(CtxToken) != "tok" {
		t.Fatalf("identity not set")
	}
}

func TestSession_InvalidSession(t *testing.T) {
	mw := Session(stubRestorer{err: domain.ErrSessionInvalid}, noStore)

	rec, _, called := run(t, mw, httptest.NewRequest(http.MethodGet, "/", nil))

	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSession_BearerBypassesCookies(t *testing.T) {
	mw := Session(stubRestorer{err: errors.New("must not be called"), verify: verifyWith("secret", domain.RoleAdmin)}, noStore)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, "secret"))

	rec, c, called := run(t, mw, req)

	if !called || rec.Code != http.StatusOK || c.Get(CtxUser) != alice {
		t.Fatalf("expected bearer authentication, got %d", rec.Code)
	}
	if c.Get(CtxCookieSession) != false {
		t.Fatalf("bearer identity must not be marked as a cookie session")
	}
}

func TestSession_BearerRoleGate(t *testing.T) {
	mw := Session(stubRestorer{err: domain.ErrSessionInvalid, verify: verifyWith("secret", domain.RoleAdmin)}, noStore)
	bob := domain.User{ID: 8, Email: "bob@example.com", Role: domain.RoleUser}
	raw, err := token.Issue("secret", bob, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)

	rec, _, called := run(t, mw, req)

	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a disallowed role, got %d (called=%v)", rec.Code, called)
	}
}

func TestSession_CookieSessionIsMarked(t *testing.T) {
	mw := Session(stubRestorer{sess: &ports.Session{Token: "tok", User: alice}}, noStore)

	_, c, called := run(t, mw, httptest.NewRequest(http.MethodGet, "/", nil))

	if !called || c.Get(CtxCookieSession) != true {
		t.Fatalf("expected cookie session flag")
	}
}
