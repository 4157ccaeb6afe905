package catalog

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
)

// Service serves the public storefront views of the catalog.
type Service struct {
	repo Repository
}

// NewService creates a catalog Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Home is the content of the landing page.
type Home struct {
	Featured   []Book
	Categories []Category
}

// Home returns up to FeaturedLimit featured active books and the active
// categories.
func (s *Service) Home(ctx context.Context) (*Home, error) {
	featured, err := s.repo.ListBooks(ctx, Filter{
		ActiveOnly:   true,
		FeaturedOnly: true,
		Limit:        FeaturedLimit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "list featured books")
	}
	cats, err := s.repo.ListCategories(ctx, true)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return &Home{Featured: featured, Categories: cats}, nil
}

// Search lists active books matching query within categoryID. An empty query
// and a zero category match everything.
func (s *Service) Search(ctx context.Context, query string, categoryID int64) ([]Book, error) {
	books, err := s.repo.ListBooks(ctx, Filter{
		Query:      strings.TrimSpace(query),
		CategoryID: categoryID,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "search books")
	}
	return books, nil
}

// Categories returns the active categories.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	cats, err := s.repo.ListCategories(ctx, true)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return cats, nil
}

// Book returns an active book. Inactive books are reported as ErrNotFound.
func (s *Service) Book(ctx context.Context, id int64) (*Book, error) {
	b, err := s.repo.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.Active {
		return nil, ErrNotFound
	}
	return b, nil
}
