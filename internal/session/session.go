// Package session keeps the signed-in user in a signed cookie and carries
// one-shot flash messages between a redirect and the next page.
package session

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultCookieName = "logos_session"
	defaultTTL        = 14 * 24 * time.Hour
	issuer            = "logos"
)

// ErrNoSession is returned by Load when the request carries no valid session.
var ErrNoSession = errors.New("no session")

// Config controls session cookies.
type Config struct {
	// Secret signs session tokens. It must not be empty.
	Secret []byte
	// TTL is the session lifetime. Defaults to two weeks.
	TTL time.Duration
	// CookieName defaults to "logos_session".
	CookieName string
	// CookieSecure marks cookies Secure. Enable behind HTTPS.
	CookieSecure bool
	// SameSite defaults to Lax.
	SameSite http.SameSite
	// Now is used for issuing and validating tokens. Defaults to time.Now.
	Now func() time.Time
}

// Manager issues and verifies session cookies.
type Manager struct {
	secret   []byte
	ttl      time.Duration
	name     string
	secure   bool
	sameSite http.SameSite
	now      func() time.Time
	parser   *jwt.Parser
}

// NewManager validates cfg and applies defaults.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("session secret is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookieName
	}
	if cfg.SameSite == 0 {
		cfg.SameSite = http.SameSiteLaxMode
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{
		secret:   cfg.Secret,
		ttl:      cfg.TTL,
		name:     cfg.CookieName,
		secure:   cfg.CookieSecure,
		sameSite: cfg.SameSite,
		now:      cfg.Now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(cfg.Now),
		),
	}, nil
}

// Issue signs a token for userID and sets it as the session cookie.
func (m *Manager) Issue(w http.ResponseWriter, userID int64) error {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return errors.Wrap(err, "sign session token")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.name,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(m.ttl),
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: m.sameSite,
	})
	return nil
}

// Load returns the user id stored in the request's session cookie.
func (m *Manager) Load(r *http.Request) (int64, error) {
	c, err := r.Cookie(m.name)
	if err != nil || c.Value == "" {
		return 0, ErrNoSession
	}

	var claims jwt.RegisteredClaims
	if _, err := m.parser.ParseWithClaims(c.Value, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}); err != nil {
		return 0, errors.Wrap(ErrNoSession, err.Error())
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrNoSession
	}
	return userID, nil
}

// Destroy expires the session cookie.
func (m *Manager) Destroy(w http.ResponseWriter) {
	http.SetCookie(w, m.expiredCookie(m.name))
}

func (m *Manager) expiredCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: m.sameSite,
	}
}
