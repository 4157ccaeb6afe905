package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/logos-bookstore/internal/domain/order"
)

const orderSelect = `SELECT o.id, COALESCE(o.customer_id, 0), COALESCE(u.username, ''), o.created_at,
		o.subtotal, o.shipping, o.total, o.shipping_address, o.payment_method, o.bank, o.status
		FROM orders o LEFT JOIN users u ON u.id = o.customer_id`

const (
	createOrderSQL = `INSERT INTO orders
		(customer_id, subtotal, shipping, total, shipping_address, payment_method, bank, status)
		VALUES (NULLIF($1::bigint, 0), $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	createOrderLineSQL = `INSERT INTO order_lines (order_id, book_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	getOrderSQL = orderSelect + ` WHERE o.id = $1`

	listOrdersByCustomerSQL = orderSelect + ` WHERE o.customer_id = $1 ORDER BY o.created_at DESC, o.id DESC`

	listAllOrdersSQL = orderSelect + ` ORDER BY o.created_at DESC, o.id DESC`

	listOrderLinesSQL = `SELECT ol.id, ol.order_id, ol.book_id, b.title, ol.quantity, ol.unit_price, ol.subtotal
		FROM order_lines ol JOIN books b ON b.id = ol.book_id
		WHERE ol.order_id = ANY($1) ORDER BY ol.order_id, ol.id`

	setOrderStatusSQL = `UPDATE orders SET status = $2 WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order header and its lines atomically. The lines are
// sent as one batch.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	return withinTx(ctx, r.pool, func(ctx context.Context) error {
		q := conn(ctx, r.pool)

		err := q.QueryRow(ctx, createOrderSQL,
			o.CustomerID, o.Subtotal, o.Shipping, o.Total,
			o.ShippingAddress, o.PaymentMethod, o.Bank, string(o.Status),
		).Scan(&o.ID, &o.CreatedAt)
		if err != nil {
			return fmt.Errorf("creating order: %w", err)
		}

		batch := &pgx.Batch{}
		for _, l := range o.Lines {
			batch.Queue(createOrderLineSQL, o.ID, l.BookID, l.Quantity, l.UnitPrice, l.Subtotal)
		}
		br := q.SendBatch(ctx, batch)
		for i := range o.Lines {
			if err := br.QueryRow().Scan(&o.Lines[i].ID); err != nil {
				_ = br.Close()
				return fmt.Errorf("creating line %d of order %d: %w", i, o.ID, err)
			}
			o.Lines[i].OrderID = o.ID
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("creating lines of order %d: %w", o.ID, err)
		}
		return nil
	})
}

// Get returns an order with its lines.
func (r *OrderRepository) Get(ctx context.Context, id int64) (*order.Order, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	orders := []order.Order{o}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// ListByCustomer returns the customer's orders with lines, newest first.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]order.Order, error) {
	return r.list(ctx, listOrdersByCustomerSQL, customerID)
}

// ListAll returns every order with lines, newest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]order.Order, error) {
	return r.list(ctx, listAllOrdersSQL)
}

// SetStatus overwrites the status of an order.
func (r *OrderRepository) SetStatus(ctx context.Context, id int64, s order.Status) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, setOrderStatusSQL, id, string(s))
	if err != nil {
		return fmt.Errorf("setting status of order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) list(ctx context.Context, sql string, args ...any) ([]order.Order, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachLines loads the lines of all orders with a single query.
func (r *OrderRepository) attachLines(ctx context.Context, orders []order.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	idx := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		idx[o.ID] = i
	}

	rows, err := conn(ctx, r.pool).Query(ctx, listOrderLinesSQL, ids)
	if err != nil {
		return fmt.Errorf("listing order lines: %w", err)
	}
	lines, err := pgx.CollectRows(rows, scanOrderLine)
	if err != nil {
		return fmt.Errorf("listing order lines: %w", err)
	}
	for _, l := range lines {
		i := idx[l.OrderID]
		orders[i].Lines = append(orders[i].Lines, l)
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o      order.Order
		status string
	)
	err := row.Scan(
		&o.ID, &o.CustomerID, &o.CustomerName, &o.CreatedAt,
		&o.Subtotal, &o.Shipping, &o.Total,
		&o.ShippingAddress, &o.PaymentMethod, &o.Bank, &status,
	)
	o.Status = order.Status(status)
	return o, err
}

func scanOrderLine(row pgx.CollectableRow) (order.Line, error) {
	var l order.Line
	err := row.Scan(&l.ID, &l.OrderID, &l.BookID, &l.BookTitle, &l.Quantity, &l.UnitPrice, &l.Subtotal)
	return l, err
}
