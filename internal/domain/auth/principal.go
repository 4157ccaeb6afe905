// Package auth holds user accounts and the authenticated principal passed to
// every service call.
package auth

import (
	"context"

	"github.com/go-faster/errors"
)

var (
	// ErrUnauthenticated is returned when an operation needs a signed-in user.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when the principal may not touch the resource.
	ErrForbidden = errors.New("forbidden")
)

// Principal identifies the caller of a request.
type Principal struct {
	UserID   int64
	Username string
	IsStaff  bool
}

// Anonymous is the principal of a request without a session.
var Anonymous = Principal{}

// Authenticated reports whether the principal belongs to a signed-in user.
func (p Principal) Authenticated() bool {
	return p.UserID != 0
}

// RequireUser returns ErrUnauthenticated for anonymous principals.
func (p Principal) RequireUser() error {
	if !p.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

// RequireStaff returns ErrForbidden unless the principal is a staff member.
func (p Principal) RequireStaff() error {
	if err := p.RequireUser(); err != nil {
		return err
	}
	if !p.IsStaff {
		return ErrForbidden
	}
	return nil
}

type principalKey struct{}

// WithPrincipal attaches p to ctx. Only the HTTP layer does this; services
// always take the principal as an explicit argument.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored by WithPrincipal, or Anonymous.
func FromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey{}).(Principal); ok {
		return p
	}
	return Anonymous
}
