package cart

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/logos-bookstore/internal/domain/auth"
	"github.com/xenking/logos-bookstore/internal/domain/catalog"
)

// BookFinder looks up catalog books.
type BookFinder interface {
	GetBook(ctx context.Context, id int64) (*catalog.Book, error)
}

// Service implements the cart operations of a signed-in customer.
type Service struct {
	carts Repository
	books BookFinder
}

// NewService creates a cart Service.
func NewService(carts Repository, books BookFinder) *Service {
	return &Service{
		carts: carts,
		books: books,
	}
}

// AddLine adds one unit of bookID to the caller's cart. Inactive books are
// reported as catalog.ErrNotFound.
func (s *Service) AddLine(ctx context.Context, p auth.Principal, bookID int64) (*Line, error) {
	if err := p.RequireUser(); err != nil {
		return nil, err
	}

	b, err := s.books.GetBook(ctx, bookID)
	if err != nil {
		return nil, errors.Wrap(err, "get book")
	}
	if !b.Active {
		return nil, errors.Wrapf(catalog.ErrNotFound, "book %d is inactive", bookID)
	}

	l, err := s.carts.Increment(ctx, p.UserID, b.ID)
	if err != nil {
		return nil, errors.Wrap(err, "increment cart line")
	}
	return l, nil
}

// Line returns one of the caller's lines.
func (s *Service) Line(ctx context.Context, p auth.Principal, lineID int64) (*Line, error) {
	if err := p.RequireUser(); err != nil {
		return nil, err
	}

	l, err := s.carts.Get(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if l.UserID != p.UserID {
		return nil, auth.ErrForbidden
	}
	return l, nil
}

// SetQuantity overwrites the quantity of the caller's line. A quantity of
// zero or less deletes the line instead.
func (s *Service) SetQuantity(ctx context.Context, p auth.Principal, lineID int64, quantity int) error {
	l, err := s.Line(ctx, p, lineID)
	if err != nil {
		return err
	}

	if quantity <= 0 {
		if err := s.carts.Delete(ctx, p.UserID, l.ID); err != nil {
			return errors.Wrap(err, "delete cart line")
		}
		return nil
	}
	if err := s.carts.SetQuantity(ctx, l.ID, quantity); err != nil {
		return errors.Wrap(err, "set cart line quantity")
	}
	return nil
}

// RemoveLine deletes the caller's line. Removing a line that is already gone
// succeeds.
func (s *Service) RemoveLine(ctx context.Context, p auth.Principal, lineID int64) error {
	if err := p.RequireUser(); err != nil {
		return err
	}
	if err := s.carts.Delete(ctx, p.UserID, lineID); err != nil {
		return errors.Wrap(err, "delete cart line")
	}
	return nil
}

// View returns the caller's lines with freshly computed totals.
func (s *Service) View(ctx context.Context, p auth.Principal) (*View, error) {
	if err := p.RequireUser(); err != nil {
		return nil, err
	}

	lines, err := s.carts.List(ctx, p.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "list cart lines")
	}
	return &View{
		Lines:  lines,
		Totals: ComputeTotals(lines),
	}, nil
}

// ItemCount returns the number of units in the caller's cart, zero for
// anonymous callers.
func (s *Service) ItemCount(ctx context.Context, p auth.Principal) (int, error) {
	if !p.Authenticated() {
		return 0, nil
	}
	v, err := s.View(ctx, p)
	if err != nil {
		return 0, err
	}
	return v.ItemCount(), nil
}
