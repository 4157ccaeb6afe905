package catalog

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockRepo struct {
	books      map[int64]Book
	categories []Category
	filters    []Filter
	listErr    error
}

func (m *mockRepo) ListBooks(_ context.Context, f Filter) ([]Book, error) {
	m.filters = append(m.filters, f)
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []Book
	for _, b := range m.books {
		out = append(out, b)
	}
	return out, nil
}

func (m *mockRepo) GetBook(_ context.Context, id int64) (*Book, error) {
	b, ok := m.books[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (m *mockRepo) ListCategories(_ context.Context, _ bool) ([]Category, error) {
	return m.categories, nil
}

func (m *mockRepo) DeleteBook(_ context.Context, _ int64) error {
	return nil
}

// --- Tests ---

func TestHome(t *testing.T) {
	repo := &mockRepo{
		books:      map[int64]Book{1: {ID: 1, Active: true, Featured: true}},
		categories: []Category{{ID: 1, Name: "Poesía", Active: true}},
	}
	svc := NewService(repo)

	home, err := svc.Home(context.Background())
	require.NoError(t, err)
	assert.Len(t, home.Featured, 1)
	assert.Len(t, home.Categories, 1)

	require.Len(t, repo.filters, 1)
	assert.Equal(t, Filter{ActiveOnly: true, FeaturedOnly: true, Limit: FeaturedLimit}, repo.filters[0])
}

func TestSearch(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	_, err := svc.Search(context.Background(), "  borges ", 3)
	require.NoError(t, err)
	assert.Equal(t, Filter{Query: "borges", CategoryID: 3, ActiveOnly: true}, repo.filters[0])

	repo.listErr = errors.New("boom")
	_, err = svc.Search(context.Background(), "", 0)
	require.Error(t, err)
}

func TestBook(t *testing.T) {
	repo := &mockRepo{books: map[int64]Book{
		1: {ID: 1, Title: "Ficciones", Active: true},
		2: {ID: 2, Title: "Retirado", Active: false},
	}}
	svc := NewService(repo)

	b, err := svc.Book(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Ficciones", b.Title)

	_, err = svc.Book(context.Background(), 2)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Book(context.Background(), 3)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAuthorFullName(t *testing.T) {
	assert.Equal(t, "Julio Cortázar", Author{FirstName: "Julio", LastName: "Cortázar"}.FullName())
	assert.Equal(t, "Anónimo", Author{FirstName: "Anónimo"}.FullName())
}
