package auth

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/logos-bookstore/internal/domain/profile"
)

var (
	// ErrUserNotFound is returned when no account matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned by Create when the username already exists.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials is returned by Authenticate for a bad username/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is a storefront account.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsStaff      bool
	CreatedAt    time.Time
}

// Account is a user together with its profile, as listed in the staff console.
// Profile is zero-valued (apart from UserID) when the row has not been created yet.
type Account struct {
	User
	Profile profile.Profile
}

// Repository persists user accounts.
type Repository interface {
	// Create inserts u and fills in ID and CreatedAt.
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	ListAccounts(ctx context.Context) ([]Account, error)
}
