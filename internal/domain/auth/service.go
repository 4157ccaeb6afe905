package auth

import (
	"context"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-faster/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenking/logos-bookstore/internal/domain/profile"
)

const minPasswordLen = 8

var usernamePattern = regexp.MustCompile(`^[\w.@+-]{3,150}$`)

// FormError lists every problem found in a registration form.
type FormError struct {
	Messages []string
}

func (e *FormError) Error() string {
	return "invalid registration: " + strings.Join(e.Messages, "; ")
}

// RegisterRequest is the input of the sign-up form.
type RegisterRequest struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
}

// Service registers and authenticates users.
type Service struct {
	users    Repository
	profiles *profile.Service
	cost     int
}

// NewService creates an auth Service.
func NewService(users Repository, profiles *profile.Service) *Service {
	return &Service{
		users:    users,
		profiles: profiles,
		cost:     bcrypt.DefaultCost,
	}
}

// Register validates the form, stores a new customer account and creates
// its profile.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	var msgs []string
	if !usernamePattern.MatchString(req.Username) {
		msgs = append(msgs, "El nombre de usuario debe tener entre 3 y 150 caracteres: letras, dígitos y @/./+/-/_.")
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			msgs = append(msgs, "Introduce un correo electrónico válido.")
		}
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLen {
		msgs = append(msgs, "La contraseña debe tener al menos 8 caracteres.")
	}
	if req.Password != req.PasswordConfirm {
		msgs = append(msgs, "Las contraseñas no coinciden.")
	}
	if len(msgs) > 0 {
		return nil, &FormError{Messages: msgs}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	u := &User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil, &FormError{Messages: []string{"Ese nombre de usuario ya está en uso."}}
		}
		return nil, errors.Wrap(err, "create user")
	}

	if _, err := s.profiles.Ensure(ctx, u.ID); err != nil {
		return nil, errors.Wrap(err, "ensure profile")
	}
	return u, nil
}

// Authenticate checks a username/password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "get user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Principal loads the current state of userID. The staff flag is read from
// storage on every request so revoking it takes effect immediately.
func (s *Service) Principal(ctx context.Context, userID int64) (Principal, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Anonymous, err
	}
	return Principal{
		UserID:   u.ID,
		Username: u.Username,
		IsStaff:  u.IsStaff,
	}, nil
}

// HashPassword hashes a password with the default cost. Tools that create
// accounts directly use it.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}
