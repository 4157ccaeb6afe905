// Package admin implements the staff console. Every operation requires a
// staff principal and returns auth.ErrForbidden otherwise.
package admin

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/logos-bookstore/internal/domain/auth"
	"github.com/xenking/logos-bookstore/internal/domain/catalog"
	"github.com/xenking/logos-bookstore/internal/domain/order"
)

// Orders is the part of the order workflow the console drives.
type Orders interface {
	ListAll(ctx context.Context) ([]order.Order, error)
	SetStatus(ctx context.Context, id int64, raw string) (order.Status, error)
}

// Accounts lists user accounts with their profiles.
type Accounts interface {
	ListAccounts(ctx context.Context) ([]auth.Account, error)
}

// Books lists and deletes catalog books.
type Books interface {
	ListBooks(ctx context.Context, f catalog.Filter) ([]catalog.Book, error)
	DeleteBook(ctx context.Context, id int64) error
}

type Service struct {
	orders   Orders
	accounts Accounts
	books    Books
}

func NewService(orders Orders, accounts Accounts, books Books) *Service {
	return &Service{
		orders:   orders,
		accounts: accounts,
		books:    books,
	}
}

// ListOrders returns every order, newest first.
func (s *Service) ListOrders(ctx context.Context, p auth.Principal) ([]order.Order, error) {
	if err := p.RequireStaff(); err != nil {
		return nil, err
	}
	return s.orders.ListAll(ctx)
}

// ListUsers returns every account with its profile.
func (s *Service) ListUsers(ctx context.Context, p auth.Principal) ([]auth.Account, error) {
	if err := p.RequireStaff(); err != nil {
		return nil, err
	}
	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list accounts")
	}
	return accounts, nil
}

// SetOrderStatus changes the status of any order. Values outside the
// enumeration yield order.ErrInvalidStatus and change nothing.
func (s *Service) SetOrderStatus(ctx context.Context, p auth.Principal, orderID int64, raw string) (order.Status, error) {
	if err := p.RequireStaff(); err != nil {
		return "", err
	}
	return s.orders.SetStatus(ctx, orderID, raw)
}

// ListBooks returns the whole catalog, active or not, newest first.
func (s *Service) ListBooks(ctx context.Context, p auth.Principal) ([]catalog.Book, error) {
	if err := p.RequireStaff(); err != nil {
		return nil, err
	}
	books, err := s.books.ListBooks(ctx, catalog.Filter{})
	if err != nil {
		return nil, errors.Wrap(err, "list books")
	}
	return books, nil
}

// DeleteBook removes a book. Books that appear in any order cannot be
// deleted and yield catalog.ErrBookReferenced.
func (s *Service) DeleteBook(ctx context.Context, p auth.Principal, bookID int64) error {
	if err := p.RequireStaff(); err != nil {
		return err
	}
	return s.books.DeleteBook(ctx, bookID)
}
