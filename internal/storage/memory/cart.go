package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/xenking/logos-bookstore/internal/domain/cart"
)

var (
	_ cart.Repository = (*CartRepository)(nil)
)

// CartRepository implements cart.Repository.
type CartRepository struct {
	s *Store
}

func (d *data) cartLine(row cartRow) cart.Line {
	return cart.Line{
		ID:       row.ID,
		UserID:   row.UserID,
		Book:     d.hydrateBook(d.books[row.BookID]),
		Quantity: row.Quantity,
		AddedAt:  row.AddedAt,
	}
}

// List returns the user's lines in the order they were added.
func (r *CartRepository) List(ctx context.Context, userID int64) ([]cart.Line, error) {
	defer r.s.lock(ctx)()
	d := &r.s.data

	var rows []cartRow
	for _, row := range d.cart {
		if row.UserID == userID {
			rows = append(rows, row)
		}
	}
	slices.SortFunc(rows, func(a, b cartRow) int {
		return cmp.Compare(a.ID, b.ID)
	})

	out := make([]cart.Line, 0, len(rows))
	for _, row := range rows {
		out = append(out, d.cartLine(row))
	}
	return out, nil
}

// ListForUpdate is List; the store mutex already serializes transactions.
func (r *CartRepository) ListForUpdate(ctx context.Context, userID int64) ([]cart.Line, error) {
	return r.List(ctx, userID)
}

// Get returns a single line.
func (r *CartRepository) Get(ctx context.Context, lineID int64) (*cart.Line, error) {
	defer r.s.lock(ctx)()
	d := &r.s.data

	row, ok := d.cart[lineID]
	if !ok {
		return nil, cart.ErrNotFound
	}
	l := d.cartLine(row)
	return &l, nil
}

// Increment adds one unit of bookID, creating the line when absent.
func (r *CartRepository) Increment(ctx context.Context, userID, bookID int64) (*cart.Line, error) {
	defer r.s.lock(ctx)()
	d := &r.s.data

	if _, ok := d.books[bookID]; !ok {
		return nil, fmt.Errorf("incrementing book %d: book does not exist", bookID)
	}
	for id, row := range d.cart {
		if row.UserID == userID && row.BookID == bookID {
			row.Quantity++
			d.cart[id] = row
			l := d.cartLine(row)
			return &l, nil
		}
	}

	d.seq.cart++
	row := cartRow{
		ID:       d.seq.cart,
		UserID:   userID,
		BookID:   bookID,
		Quantity: 1,
		AddedAt:  r.s.now(),
	}
	d.cart[row.ID] = row
	l := d.cartLine(row)
	return &l, nil
}

// SetQuantity overwrites the quantity of a line. Quantities below one are
// rejected like the database CHECK constraint does.
func (r *CartRepository) SetQuantity(ctx context.Context, lineID int64, quantity int) error {
	defer r.s.lock(ctx)()
	d := &r.s.data

	if quantity < 1 {
		return fmt.Errorf("setting quantity of cart line %d: %d is below 1", lineID, quantity)
	}
	row, ok := d.cart[lineID]
	if !ok {
		return cart.ErrNotFound
	}
	row.Quantity = quantity
	d.cart[lineID] = row
	return nil
}

// Delete removes the line if it belongs to userID.
func (r *CartRepository) Delete(ctx context.Context, userID, lineID int64) error {
	defer r.s.lock(ctx)()
	d := &r.s.data

	if row, ok := d.cart[lineID]; ok && row.UserID == userID {
		delete(d.cart, lineID)
	}
	return nil
}

// Clear removes every line of the user.
func (r *CartRepository) Clear(ctx context.Context, userID int64) error {
	defer r.s.lock(ctx)()
	d := &r.s.data

	for id, row := range d.cart {
		if row.UserID == userID {
			delete(d.cart, id)
		}
	}
	return nil
}
