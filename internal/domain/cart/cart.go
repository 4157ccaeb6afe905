// Package cart implements per-user shopping carts and their price totals.
package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/logos-bookstore/internal/domain/catalog"
)

// ErrNotFound is returned when a cart line does not exist.
var ErrNotFound = errors.New("cart line not found")

// Line is one (user, book, quantity) record of unpurchased intent.
type Line struct {
	ID       int64
	UserID   int64
	Book     catalog.Book
	Quantity int
	AddedAt  time.Time
}

// Subtotal returns quantity × current book price.
func (l Line) Subtotal() decimal.Decimal {
	return l.Book.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// View is what the cart page shows: the lines and their totals.
type View struct {
	Lines  []Line
	Totals Totals
}

// ItemCount sums the quantities of all lines.
func (v View) ItemCount() int {
	n := 0
	for _, l := range v.Lines {
		n += l.Quantity
	}
	return n
}

// Repository persists cart lines. Lines are returned with their book loaded.
type Repository interface {
	List(ctx context.Context, userID int64) ([]Line, error)
	// ListForUpdate is List with the rows locked until the surrounding
	// transaction ends.
	ListForUpdate(ctx context.Context, userID int64) ([]Line, error)
	Get(ctx context.Context, lineID int64) (*Line, error)
	// Increment adds one unit of bookID to the user's cart, creating the line
	// with quantity 1 when absent. It must be a single atomic statement.
	Increment(ctx context.Context, userID, bookID int64) (*Line, error)
	SetQuantity(ctx context.Context, lineID int64, quantity int) error
	// Delete removes the line only if it belongs to userID.
	Delete(ctx context.Context, userID, lineID int64) error
	Clear(ctx context.Context, userID int64) error
}
