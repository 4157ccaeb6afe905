package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/xenking/logos-bookstore/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository.
type OrderRepository struct {
	s *Store
}

// Create stores the order after checking the same invariants the database
// enforces with CHECK constraints.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	defer r.s.lock(ctx)()
	d := &r.s.data

	if !o.Total.Equal(o.Subtotal.Add(o.Shipping)) {
		return fmt.Errorf("creating order: total %s != subtotal %s + shipping %s", o.Total, o.Subtotal, o.Shipping)
	}
	if _, err := order.ParseStatus(string(o.Status)); err != nil {
		return fmt.Errorf("creating order: %w", err)
	}
	for _, l := range o.Lines {
		if l.Quantity < 1 {
			return fmt.Errorf("creating order: line quantity %d is below 1", l.Quantity)
		}
		if !l.Subtotal.Equal(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))) {
			return fmt.Errorf("creating order: line subtotal %s != %d × %s", l.Subtotal, l.Quantity, l.UnitPrice)
		}
		if _, ok := d.books[l.BookID]; !ok {
			return fmt.Errorf("creating order: book %d does not exist", l.BookID)
		}
	}

	d.seq.order++
	o.ID = d.seq.order
	o.CreatedAt = r.s.now()
	for i := range o.Lines {
		d.seq.orderLine++
		o.Lines[i].ID = d.seq.orderLine
		o.Lines[i].OrderID = o.ID
	}

	stored := *o
	stored.Lines = slices.Clone(o.Lines)
	d.orders[o.ID] = stored
	return nil
}

// Get returns an order with its lines.
func (r *OrderRepository) Get(ctx context.Context, id int64) (*order.Order, error) {
	defer r.s.lock(ctx)()
	d := &r.s.data

	o, ok := d.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	o = d.hydrateOrder(o)
	return &o, nil
}

// ListByCustomer returns the customer's orders, newest first.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]order.Order, error) {
	return r.list(ctx, func(o order.Order) bool { return o.CustomerID == customerID })
}

// ListAll returns every order, newest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]order.Order, error) {
	return r.list(ctx, func(order.Order) bool { return true })
}

// SetStatus overwrites the status of an order.
func (r *OrderRepository) SetStatus(ctx context.Context, id int64, s order.Status) error {
	defer r.s.lock(ctx)()
	d := &r.s.data

	o, ok := d.orders[id]
	if !ok {
		return order.ErrNotFound
	}
	o.Status = s
	d.orders[id] = o
	return nil
}

func (r *OrderRepository) list(ctx context.Context, keep func(order.Order) bool) ([]order.Order, error) {
	defer r.s.lock(ctx)()
	d := &r.s.data

	var out []order.Order
	for _, o := range d.orders {
		if keep(o) {
			out = append(out, d.hydrateOrder(o))
		}
	}
	slices.SortFunc(out, func(a, b order.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

// hydrateOrder resolves the customer name and book titles the way the SQL
// joins do.
func (d *data) hydrateOrder(o order.Order) order.Order {
	o.CustomerName = ""
	if u, ok := d.users[o.CustomerID]; ok {
		o.CustomerName = u.Username
	}
	lines := slices.Clone(o.Lines)
	for i, l := range lines {
		if b, ok := d.books[l.BookID]; ok {
			lines[i].BookTitle = b.Title
		}
	}
	o.Lines = lines
	return o
}
