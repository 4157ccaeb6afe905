package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/logos-bookstore/internal/domain/auth"
	"github.com/xenking/logos-bookstore/internal/domain/order"
	"github.com/xenking/logos-bookstore/internal/domain/profile"
)

const userColumns = `id, username, email, password_hash, is_staff, created_at`

const (
	createUserSQL = `INSERT INTO users (username, email, password_hash, is_staff)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at`

	getUserByIDSQL = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	getUserByUsernameSQL = `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	listAccountsSQL = `SELECT u.id, u.username, u.email, u.password_hash, u.is_staff, u.created_at,
		COALESCE(p.phone, ''), COALESCE(p.address, ''), COALESCE(p.city, ''),
		COALESCE(p.postal_code, ''), COALESCE(p.is_admin, FALSE)
		FROM users u LEFT JOIN profiles p ON p.user_id = u.id ORDER BY u.id`

	getProfileSQL = `SELECT user_id, phone, address, city, postal_code, is_admin
		FROM profiles WHERE user_id = $1`

	createProfileSQL = `INSERT INTO profiles (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`

	saveProfileSQL = `INSERT INTO profiles (user_id, phone, address, city, postal_code)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET phone = EXCLUDED.phone, address = EXCLUDED.address,
			city = EXCLUDED.city, postal_code = EXCLUDED.postal_code`

	saveShippingSQL = `INSERT INTO profiles (user_id, address, city, postal_code)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET address = EXCLUDED.address,
			city = EXCLUDED.city, postal_code = EXCLUDED.postal_code`

	grantAdminSQL = `INSERT INTO profiles (user_id, is_admin) VALUES ($1, TRUE)
		ON CONFLICT (user_id) DO UPDATE SET is_admin = TRUE`
)

var _ auth.Repository = (*UserRepository)(nil)

// UserRepository implements auth.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts u and fills in its ID and creation time.
func (r *UserRepository) Create(ctx context.Context, u *auth.User) error {
	err := conn(ctx, r.pool).QueryRow(ctx, createUserSQL,
		u.Username, u.Email, u.PasswordHash, u.IsStaff,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if pgErrorCode(err) == codeUniqueViolation {
			return auth.ErrUsernameTaken
		}
		return fmt.Errorf("creating user %q: %w", u.Username, err)
	}
	return nil
}

// GetByID returns a user by its identifier.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	return r.get(ctx, getUserByIDSQL, id)
}

// GetByUsername returns a user by its exact username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	return r.get(ctx, getUserByUsernameSQL, username)
}

// ListAccounts returns all users with their profiles, oldest first.
func (r *UserRepository) ListAccounts(ctx context.Context) ([]auth.Account, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, listAccountsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (auth.Account, error) {
		var a auth.Account
		err := row.Scan(
			&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.IsStaff, &a.CreatedAt,
			&a.Profile.Phone, &a.Profile.Address, &a.Profile.City,
			&a.Profile.PostalCode, &a.Profile.IsAdmin,
		)
		a.Profile.UserID = a.ID
		return a, err
	})
}

func (r *UserRepository) get(ctx context.Context, sql string, arg any) (*auth.User, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting user %v: %w", arg, err)
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user %v: %w", arg, err)
	}
	return &u, nil
}

func scanUser(row pgx.CollectableRow) (auth.User, error) {
	var u auth.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsStaff, &u.CreatedAt)
	return u, err
}

var (
	_ profile.Repository  = (*ProfileRepository)(nil)
	_ order.ShippingStore = (*ProfileRepository)(nil)
)

// ProfileRepository implements profile.Repository backed by PostgreSQL.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository returns a ProfileRepository that uses the given pool.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// Get returns the profile of userID.
func (r *ProfileRepository) Get(ctx context.Context, userID int64) (*profile.Profile, error) {
	var p profile.Profile
	err := conn(ctx, r.pool).QueryRow(ctx, getProfileSQL, userID).Scan(
		&p.UserID, &p.Phone, &p.Address, &p.City, &p.PostalCode, &p.IsAdmin,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, profile.ErrNotFound
		}
		return nil, fmt.Errorf("getting profile of user %d: %w", userID, err)
	}
	return &p, nil
}

// Create inserts an empty profile unless one exists.
func (r *ProfileRepository) Create(ctx context.Context, userID int64) error {
	if _, err := conn(ctx, r.pool).Exec(ctx, createProfileSQL, userID); err != nil {
		return fmt.Errorf("creating profile of user %d: %w", userID, err)
	}
	return nil
}

// Save upserts the editable fields of p.
func (r *ProfileRepository) Save(ctx context.Context, p *profile.Profile) error {
	_, err := conn(ctx, r.pool).Exec(ctx, saveProfileSQL,
		p.UserID, p.Phone, p.Address, p.City, p.PostalCode,
	)
	if err != nil {
		return fmt.Errorf("saving profile of user %d: %w", p.UserID, err)
	}
	return nil
}

// SaveShipping upserts the shipping fields only.
func (r *ProfileRepository) SaveShipping(ctx context.Context, userID int64, s profile.Shipping) error {
	_, err := conn(ctx, r.pool).Exec(ctx, saveShippingSQL, userID, s.Address, s.City, s.PostalCode)
	if err != nil {
		return fmt.Errorf("saving shipping of user %d: %w", userID, err)
	}
	return nil
}

// GrantAdmin sets the admin flag of userID's profile, creating it if needed.
func (r *ProfileRepository) GrantAdmin(ctx context.Context, userID int64) error {
	if _, err := conn(ctx, r.pool).Exec(ctx, grantAdminSQL, userID); err != nil {
		return fmt.Errorf("granting admin to user %d: %w", userID, err)
	}
	return nil
}
