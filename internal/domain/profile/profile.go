// Package profile manages the customer profile attached to every user account.
package profile

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned by repositories when a user has no profile row yet.
var ErrNotFound = errors.New("profile not found")

// Profile complements a user account with contact and shipping details.
type Profile struct {
	UserID     int64
	Phone      string
	Address    string
	City       string
	PostalCode string
	IsAdmin    bool
}

// Shipping is the subset of a profile refreshed by every successful checkout.
type Shipping struct {
	Address    string
	City       string
	PostalCode string
}

// Repository persists profiles.
type Repository interface {
	Get(ctx context.Context, userID int64) (*Profile, error)
	// Create inserts an empty profile and does nothing if one already exists.
	Create(ctx context.Context, userID int64) error
	// Save overwrites the editable fields, creating the row when missing.
	Save(ctx context.Context, p *Profile) error
	// SaveShipping upserts only the shipping fields, leaving the rest untouched.
	SaveShipping(ctx context.Context, userID int64, s Shipping) error
}

// Service ensures every account has exactly one profile.
type Service struct {
	repo Repository
}

// NewService creates a profile Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Ensure returns the profile of userID, creating a default one if absent.
func (s *Service) Ensure(ctx context.Context, userID int64) (*Profile, error) {
	p, err := s.repo.Get(ctx, userID)
	switch {
	case err == nil:
		return p, nil
	case !errors.Is(err, ErrNotFound):
		return nil, errors.Wrap(err, "get profile")
	}

	if err := s.repo.Create(ctx, userID); err != nil {
		return nil, errors.Wrap(err, "create profile")
	}
	p, err = s.repo.Get(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get created profile")
	}
	return p, nil
}

// Update replaces the contact details a customer edits on the profile page.
// The admin flag is never changed from here.
func (s *Service) Update(ctx context.Context, userID int64, phone string, ship Shipping) (*Profile, error) {
	p, err := s.Ensure(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.Phone = phone
	p.Address = ship.Address
	p.City = ship.City
	p.PostalCode = ship.PostalCode
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, errors.Wrap(err, "save profile")
	}
	return p, nil
}
