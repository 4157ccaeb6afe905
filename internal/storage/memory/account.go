package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/xenking/logos-bookstore/internal/domain/auth"
	"github.com/xenking/logos-bookstore/internal/domain/order"
	"github.com/xenking/logos-bookstore/internal/domain/profile"
)

var _ auth.Repository = (*UserRepository)(nil)

// UserRepository implements auth.Repository.
type UserRepository struct {
	s *Store
}

// Create inserts u with a unique username.
func (r *UserRepository) Create(ctx context.Context, u *auth.User) error {
	defer r.s.lock(ctx)()
	d := &r.s.data

	for _, existing := range d.users {
		if existing.Username == u.Username {
			return auth.ErrUsernameTaken
		}
	}
	d.seq.user++
	u.ID = d.seq.user
	u.CreatedAt = r.s.now()
	d.users[u.ID] = *u
	return nil
}

// GetByID returns a user by its identifier.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	defer r.s.lock(ctx)()

	u, ok := r.s.data.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return &u, nil
}

// GetByUsername returns a user by its exact username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	defer r.s.lock(ctx)()

	for _, u := range r.s.data.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

// ListAccounts returns all users with their profiles, oldest first.
func (r *UserRepository) ListAccounts(ctx context.Context) ([]auth.Account, error) {
	defer r.s.lock(ctx)()
	d := &r.s.data

	out := make([]auth.Account, 0, len(d.users))
	for _, u := range d.users {
		p, ok := d.profiles[u.ID]
		if !ok {
			p = profile.Profile{UserID: u.ID}
		}
		out = append(out, auth.Account{User: u, Profile: p})
	}
	slices.SortFunc(out, func(a, b auth.Account) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

var (
	_ profile.Repository  = (*ProfileRepository)(nil)
	_ order.ShippingStore = (*ProfileRepository)(nil)
)

// ProfileRepository implements profile.Repository.
type ProfileRepository struct {
	s *Store
}

// Get returns the profile of userID.
func (r *ProfileRepository) Get(ctx context.Context, userID int64) (*profile.Profile, error) {
	defer r.s.lock(ctx)()

	p, ok := r.s.data.profiles[userID]
	if !ok {
		return nil, profile.ErrNotFound
	}
	return &p, nil
}

// Create inserts an empty profile unless one exists.
func (r *ProfileRepository) Create(ctx context.Context, userID int64) error {
	defer r.s.lock(ctx)()
	d := &r.s.data

	if _, ok := d.profiles[userID]; !ok {
		d.profiles[userID] = profile.Profile{UserID: userID}
	}
	return nil
}

// Save upserts the editable fields of p, keeping the admin flag.
func (r *ProfileRepository) Save(ctx context.Context, p *profile.Profile) error {
	defer r.s.lock(ctx)()
	d := &r.s.data

	cur := d.profiles[p.UserID]
	cur.UserID = p.UserID
	cur.Phone = p.Phone
	cur.Address = p.Address
	cur.City = p.City
	cur.PostalCode = p.PostalCode
	d.profiles[p.UserID] = cur
	return nil
}

// SaveShipping upserts the shipping fields only.
func (r *ProfileRepository) SaveShipping(ctx context.Context, userID int64, s profile.Shipping) error {
	defer r.s.lock(ctx)()
	d := &r.s.data

	cur := d.profiles[userID]
	cur.UserID = userID
	cur.Address = s.Address
	cur.City = s.City
	cur.PostalCode = s.PostalCode
	d.profiles[userID] = cur
	return nil
}

// GrantAdmin sets the admin flag, creating the profile if needed.
func (r *ProfileRepository) GrantAdmin(ctx context.Context, userID int64) error {
	defer r.s.lock(ctx)()
	d := &r.s.data

	cur := d.profiles[userID]
	cur.UserID = userID
	cur.IsAdmin = true
	d.profiles[userID] = cur
	return nil
}
