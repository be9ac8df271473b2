package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/labstack/echo/v4"

	"github.com/taskpanel/taskpanel/internal/api/middleware"
	"github.com/taskpanel/taskpanel/internal/core/domain"
	"github.com/taskpanel/taskpanel/internal/core/ports"
)

const (
	userCookie    = "user"
	sessionMaxAge = int(7 * 24 * time.Hour / time.Second)
)

var errNoSession = errors.New("no session cookies")

// CookieJar persists panel sessions in two cookies: the raw token and the
// public user, signed so it cannot be edited client side.
type CookieJar struct {
	codec  *securecookie.SecureCookie
	secure bool
}

// NewCookieJar signs the user cookie with hashKey. An empty key gets a random
// one, which invalidates sessions on restart.
func NewCookieJar(hashKey []byte, secure bool) *CookieJar {
	if len(hashKey) == 0 {
		hashKey = securecookie.GenerateRandomKey(32)
	}
	codec := securecookie.New(hashKey, nil).MaxAge(sessionMaxAge)
	codec.SetSerializer(securecookie.JSONEncoder{})
	return &CookieJar{codec: codec, secure: secure}
}

// Store returns the session store for one request.
func (j *CookieJar) Store(c echo.Context) ports.SessionStore {
	return &cookieSessionStore{jar: j, c: c}
}

type cookieSessionStore struct {
	jar *CookieJar
	c   echo.Context
}

func (s *cookieSessionStore) Save(sess ports.Session) error {
	encoded, err := s.jar.codec.Encode(userCookie, sess.User)
	if err != nil {
		return fmt.Errorf("encode user cookie: %w", err)
	}
	s.c.SetCookie(s.jar.cookie(middleware.TokenCookie, sess.Token, sessionMaxAge))
	s.c.SetCookie(s.jar.cookie(userCookie, encoded, sessionMaxAge))
	return nil
}

func (s *cookieSessionStore) Load() (ports.Session, error) {
	tok, err := s.c.Cookie(middleware.TokenCookie)
	if err != nil || tok.Value == "" {
		return ports.Session{}, errNoSession
	}
	uc, err := s.c.Cookie(userCookie)
	if err != nil {
		return ports.Session{}, errNoSession
	}
	var user domain.User
	if err := s.jar.codec.Decode(userCookie, uc.Value, &user); err != nil {
		return ports.Session{}, fmt.Errorf("decode user cookie: %w", err)
	}
	return ports.Session{Token: tok.Value, User: user}, nil
}

func (s *cookieSessionStore) Clear() {
	s.c.SetCookie(s.jar.cookie(middleware.TokenCookie, "", -1))
	s.c.SetCookie(s.jar.cookie(userCookie, "", -1))
}

func (j *CookieJar) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
