package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("access forbidden")
	ErrSessionInvalid     = errors.New("session invalid")
)

// User models an authenticated actor as seen by callers. It never carries
// the password.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user may reach admin-only routes.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserRecord is the stored form of a user, password included.
type UserRecord struct {
	ID        int64     `json:"id" bson:"id"`
	Email     string    `json:"email" bson:"email"`
	Password  string    `json:"password" bson:"password"`
	Name      string    `json:"name" bson:"name"`
	Role      string    `json:"role" bson:"role"`
	Avatar    string    `json:"avatar,omitempty" bson:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// Public strips the password.
func (r UserRecord) Public() User {
	return User{
		ID:        r.ID,
		Email:     r.Email,
		Name:      r.Name,
		Role:      r.Role,
		Avatar:    r.Avatar,
		CreatedAt: r.CreatedAt,
	}
}

// PublicUsers maps a slice of records to their public projection.
func PublicUsers(records []UserRecord) []User {
	out := make([]User, len(records))
	for i, r := range records {
		out[i] = r.Public()
	}
	return out
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}
