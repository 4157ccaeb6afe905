package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Helpers ---

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestManager(t *testing.T, c *clock) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		Secret: []byte("test-secret"),
		TTL:    time.Hour,
		Now:    c.now,
	})
	require.NoError(t, err)
	return m
}

// requestWith replays the cookies set on rec into a new request.
func requestWith(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

// --- Tests ---

func TestNewManager_RequiresSecret(t *testing.T) {
	_, err := NewManager(Config{})
	require.Error(t, err)
}

func TestIssueAndLoad(t *testing.T) {
	c := &clock{t: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)}
	m := newTestManager(t, c)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Issue(rec, 42))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, defaultCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	userID, err := m.Load(requestWith(rec))
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestLoad_Expired(t *testing.T) {
	c := &clock{t: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)}
	m := newTestManager(t, c)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Issue(rec, 7))

	c.t = c.t.Add(2 * time.Hour)
	_, err := m.Load(requestWith(rec))
	require.ErrorIs(t, err, ErrNoSession)
}

func TestLoad_Rejects(t *testing.T) {
	c := &clock{t: time.Now()}
	m := newTestManager(t, c)

	sign := func(t *testing.T, method jwt.SigningMethod, key any) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(c.t.Add(time.Hour)),
		}).SignedString(key)
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name  string
		value string
	}{
		{"no cookie", ""},
		{"garbage", "not-a-token"},
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("other"))},
		{"other algorithm", sign(t, jwt.SigningMethodHS512, []byte("test-secret"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.value != "" {
				req.AddCookie(&http.Cookie{Name: defaultCookieName, Value: tt.value})
			}
			_, err := m.Load(req)
			require.ErrorIs(t, err, ErrNoSession)
		})
	}
}

func TestDestroy(t *testing.T) {
	m := newTestManager(t, &clock{t: time.Now()})

	rec := httptest.NewRecorder()
	m.Destroy(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.Empty(t, cookies[0].Value)
}

func TestFlashes(t *testing.T) {
	m := newTestManager(t, &clock{t: time.Now()})

	rec := httptest.NewRecorder()
	m.SetFlash(rec,
		Flash{Level: LevelSuccess, Message: "¡Pedido realizado con éxito!"},
		Flash{Level: LevelWarning, Message: `Tu carrito está "vacío"`},
	)

	out := httptest.NewRecorder()
	got := m.PopFlashes(out, requestWith(rec))
	assert.Equal(t, []Flash{
		{Level: LevelSuccess, Message: "¡Pedido realizado con éxito!"},
		{Level: LevelWarning, Message: `Tu carrito está "vacío"`},
	}, got)

	// Popping expires the cookie.
	cleared := out.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)

	assert.Nil(t, m.PopFlashes(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)))

	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.AddCookie(&http.Cookie{Name: flashCookieName, Value: "%%%"})
	assert.Nil(t, m.PopFlashes(httptest.NewRecorder(), bad))
}
