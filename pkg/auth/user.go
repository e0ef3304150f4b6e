package auth

import (
	"context"
	"time"
)

// User is an account record. PasswordHash is never serialized.
type User struct {
	ID           string    `json:"_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	Avatar       string    `json:"avatar,omitempty"`
	GoogleID     string    `json:"-"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserUpdate holds the fields of a partial update. Nil fields are left as is.
type UserUpdate struct {
	Email        *string
	Name         *string
	Avatar       *string
	PasswordHash *string
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.Email == nil && u.Name == nil && u.Avatar == nil && u.PasswordHash == nil
}

// UserStorage persists users. Implementations must enforce email uniqueness
// and report violations as ErrDuplicateEmail, and report missing records as
// ErrUserNotFound.
type UserStorage interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, id string, upd UserUpdate) (*User, error)
}

// TokenIssuer creates bearer tokens for a user ID.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// Session is returned by every successful authentication.
type Session struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
