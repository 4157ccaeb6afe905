package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/logos-bookstore/internal/domain/cart"
)

const cartLineSelect = `SELECT l.id, l.user_id, l.quantity, l.added_at, ` + bookColumns + `
		FROM cart_lines l
		JOIN books b ON b.id = l.book_id
		JOIN authors a ON a.id = b.author_id
		LEFT JOIN categories c ON c.id = b.category_id`

const (
	listCartSQL = cartLineSelect + ` WHERE l.user_id = $1 ORDER BY l.added_at, l.id`

	listCartForUpdateSQL = listCartSQL + ` FOR UPDATE OF l`

	getCartLineSQL = cartLineSelect + ` WHERE l.id = $1`

	incrementCartLineSQL = `INSERT INTO cart_lines (user_id, book_id, quantity) VALUES ($1, $2, 1)
		ON CONFLICT (user_id, book_id) DO UPDATE SET quantity = cart_lines.quantity + 1
		RETURNING id`

	setCartQuantitySQL = `UPDATE cart_lines SET quantity = $2 WHERE id = $1`

	deleteCartLineSQL = `DELETE FROM cart_lines WHERE id = $1 AND user_id = $2`

	clearCartSQL = `DELETE FROM cart_lines WHERE user_id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// List returns the user's lines in the order they were added.
func (r *CartRepository) List(ctx context.Context, userID int64) ([]cart.Line, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, listCartSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing cart of user %d: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanCartLine)
}

// ListForUpdate locks the user's lines until the surrounding transaction
// ends. Outside a transaction the lock is released immediately.
func (r *CartRepository) ListForUpdate(ctx context.Context, userID int64) ([]cart.Line, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, listCartForUpdateSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("locking cart of user %d: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanCartLine)
}

// Get returns a single line by its identifier.
func (r *CartRepository) Get(ctx context.Context, lineID int64) (*cart.Line, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, getCartLineSQL, lineID)
	if err != nil {
		return nil, fmt.Errorf("getting cart line %d: %w", lineID, err)
	}

	l, err := pgx.CollectExactlyOneRow(rows, scanCartLine)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNotFound
		}
		return nil, fmt.Errorf("getting cart line %d: %w", lineID, err)
	}
	return &l, nil
}

// Increment adds one unit in a single upsert so concurrent adds of the same
// book never create two lines.
func (r *CartRepository) Increment(ctx context.Context, userID, bookID int64) (*cart.Line, error) {
	var id int64
	if err := conn(ctx, r.pool).QueryRow(ctx, incrementCartLineSQL, userID, bookID).Scan(&id); err != nil {
		return nil, fmt.Errorf("incrementing book %d in cart of user %d: %w", bookID, userID, err)
	}
	return r.Get(ctx, id)
}

// SetQuantity overwrites the quantity of a line.
func (r *CartRepository) SetQuantity(ctx context.Context, lineID int64, quantity int) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, setCartQuantitySQL, lineID, quantity)
	if err != nil {
		return fmt.Errorf("setting quantity of cart line %d: %w", lineID, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrNotFound
	}
	return nil
}

// Delete removes the line if it belongs to userID.
func (r *CartRepository) Delete(ctx context.Context, userID, lineID int64) error {
	if _, err := conn(ctx, r.pool).Exec(ctx, deleteCartLineSQL, lineID, userID); err != nil {
		return fmt.Errorf("deleting cart line %d: %w", lineID, err)
	}
	return nil
}

// Clear removes every line of the user.
func (r *CartRepository) Clear(ctx context.Context, userID int64) error {
	if _, err := conn(ctx, r.pool).Exec(ctx, clearCartSQL, userID); err != nil {
		return fmt.Errorf("clearing cart of user %d: %w", userID, err)
	}
	return nil
}

func scanCartLine(row pgx.CollectableRow) (cart.Line, error) {
	var l cart.Line
	dest := append([]any{&l.ID, &l.UserID, &l.Quantity, &l.AddedAt}, bookDest(&l.Book)...)
	err := row.Scan(dest...)
	return l, err
}
