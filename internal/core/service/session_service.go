package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskpanel/taskpanel/internal/core/domain"
	"github.com/taskpanel/taskpanel/internal/core/ports"
	"github.com/taskpanel/taskpanel/internal/metrics"
	"github.com/taskpanel/taskpanel/internal/pkg/token"
)

// SessionTTL is how long a session pair stays valid.
const SessionTTL = 7 * 24 * time.Hour

// SessionService implements login, registration and session restore on top
// of the gateway's user lookup.
type SessionService struct {
	gateway   ports.Gateway
	jwtSecret string
	tokenTTL  time.Duration
	adminOnly bool
	log       zerolog.Logger
}

var _ ports.SessionService = (*SessionService)(nil)

// NewSessionService returns a SessionService. With adminOnly set, only users
// with the admin role may hold a session.
func NewSessionService(gateway ports.Gateway, jwtSecret string, adminOnly bool, log zerolog.Logger) *SessionService {
	return &SessionService{
		gateway:   gateway,
		jwtSecret: jwtSecret,
		tokenTTL:  SessionTTL,
		adminOnly: adminOnly,
		log:       log,
	}
}

// Login checks the credentials and, on success, saves exactly one session
// pair to store. Nothing is saved on failure.
func (s *SessionService) Login(ctx context.Context, email, password string, store ports.SessionStore) (*ports.Session, error) {
	res, err := s.gateway.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	user := res.Value
	if !s.roleAllowed(user.Role) {
		metrics.LoginsTotal.WithLabelValues("forbidden").Inc()
		s.log.Info().Int64("user_id", user.ID).Str("role", user.Role).Msg("login rejected, admin privileges required")
		return nil, domain.ErrForbidden
	}

	tok, err := token.Issue(s.jwtSecret, user, s.tokenTTL, time.Now())
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	sess := ports.Session{Token: tok, User: user}
	if err := store.Save(sess); err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Int64("user_id", user.ID).Str("backend", string(res.Backend)).Msg("user logged in")
	return &sess, nil
}

// Register creates a regular user account. It does not sign the user in.
func (s *SessionService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	res, err := s.gateway.RegisterUser(ctx, email, password, name)
	if err != nil {
		return nil, err
	}
	return &res.Value, nil
}

// Restore reads the session pair back from store. An unreadable pair, a
// token that does not verify or belongs to someone else, or a role that may
// not hold a session clears store and yields domain.ErrSessionInvalid.
func (s *SessionService) Restore(store ports.SessionStore) (*ports.Session, error) {
	sess, err := store.Load()
	if err != nil {
		store.Clear()
		return nil, domain.ErrSessionInvalid
	}
	claims, err := token.Parse(s.jwtSecret, sess.Token)
	if err != nil || claims.UserID != sess.User.ID || !s.roleAllowed(sess.User.Role) {
		store.Clear()
		return nil, domain.ErrSessionInvalid
	}
	return &sess, nil
}

// Verify checks a bearer token. A token that does not verify, or whose role
// may not hold a session, yields domain.ErrSessionInvalid.
func (s *SessionService) Verify(raw string) (*domain.User, error) {
	claims, err := token.Parse(s.jwtSecret, raw)
	if err != nil {
		return nil, domain.ErrSessionInvalid
	}
	user := claims.User()
	if !s.roleAllowed(user.Role) {
		s.log.Warn().Int64("user_id", user.ID).Str("role", user.Role).Msg("bearer role not allowed")
		return nil, domain.ErrSessionInvalid
	}
	return &user, nil
}

// Logout clears the session pair.
func (s *SessionService) Logout(store ports.SessionStore) {
	store.Clear()
}

func (s *SessionService) roleAllowed(role string) bool {
	if s.adminOnly {
		return role == domain.RoleAdmin
	}
	return domain.ValidRole(role)
}
