package profile

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	profiles map[int64]Profile
	creates  int
	getErr   error
}

func newMockRepo() *mockRepo {
	return &mockRepo{profiles: make(map[int64]Profile)}
}

func (m *mockRepo) Get(_ context.Context, userID int64) (*Profile, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *mockRepo) Create(_ context.Context, userID int64) error {
	m.creates++
	if _, ok := m.profiles[userID]; !ok {
		m.profiles[userID] = Profile{UserID: userID}
	}
	return nil
}

func (m *mockRepo) Save(_ context.Context, p *Profile) error {
	m.profiles[p.UserID] = *p
	return nil
}

func (m *mockRepo) SaveShipping(_ context.Context, userID int64, s Shipping) error {
	p := m.profiles[userID]
	p.UserID = userID
	p.Address, p.City, p.PostalCode = s.Address, s.City, s.PostalCode
	m.profiles[userID] = p
	return nil
}

func TestEnsure_CreatesMissingProfile(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p, err := svc.Ensure(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.UserID)
	assert.Equal(t, 1, repo.creates)

	// Second call finds the existing row.
	_, err = svc.Ensure(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.creates)
}

func TestEnsure_RepositoryError(t *testing.T) {
	repo := newMockRepo()
	repo.getErr = errors.New("db down")
	svc := NewService(repo)

	_, err := svc.Ensure(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get profile")
	assert.Zero(t, repo.creates)
}

func TestUpdate_KeepsAdminFlag(t *testing.T) {
	repo := newMockRepo()
	repo.profiles[3] = Profile{UserID: 3, IsAdmin: true}
	svc := NewService(repo)

	p, err := svc.Update(context.Background(), 3, "555-1234", Shipping{
		Address:    "Av. Siempre Viva 742",
		City:       "Bogotá",
		PostalCode: "110111",
	})
	require.NoError(t, err)
	assert.True(t, p.IsAdmin)
	assert.Equal(t, "555-1234", repo.profiles[3].Phone)
	assert.Equal(t, "Bogotá", repo.profiles[3].City)
}
