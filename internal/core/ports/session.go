package ports

import (
	"context"

	"github.com/taskpanel/taskpanel/internal/core/domain"
)

// Session is the persisted identity of a signed-in user.
type Session struct {
	Token string
	User  domain.User
}

// SessionStore persists a session pair (token + user) on the client side.
type SessionStore interface {
	Save(s Session) error
	Load() (Session, error)
	Clear()
}

// SessionService signs users in and out.
type SessionService interface {
	Login(ctx context.Context, email, password string, store SessionStore) (*Session, error)
	Register(ctx context.Context, email, password, name string) (*domain.User, error)
	Restore(store SessionStore) (*Session, error)
	// Verify checks a bearer token under the same rules as Restore.
	Verify(raw string) (*domain.User, error)
	Logout(store SessionStore)
}
