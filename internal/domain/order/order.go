package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/logos-bookstore/internal/domain/cart"
	"github.com/xenking/logos-bookstore/internal/domain/profile"
)

// Sentinel errors for order placement and the status workflow.
var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrNotFound      = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid order status")
)

// ValidationError is returned by PlaceOrder when the checkout form fails
// validation. Cart holds the caller's cart as read inside the transaction so
// the cart page can be re-rendered with current totals.
type ValidationError struct {
	Messages []string
	Cart     cart.View
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("checkout validation failed: %s", strings.Join(e.Messages, "; "))
}

// Status is the lifecycle state of an order. Values are stored and submitted
// as-is.
type Status string

const (
	StatusPending   Status = "pendiente"
	StatusPaid      Status = "pagado"
	StatusShipped   Status = "enviado"
	StatusDelivered Status = "entregado"
	StatusCancelled Status = "cancelado"
)

var statusLabels = map[Status]string{
	StatusPending:   "Pendiente",
	StatusPaid:      "Pagado",
	StatusShipped:   "Enviado",
	StatusDelivered: "Entregado",
	StatusCancelled: "Cancelado",
}

// Statuses returns every status in display order.
func Statuses() []Status {
	return []Status{StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled}
}

// ParseStatus returns ErrInvalidStatus for values outside the enumeration.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if _, ok := statusLabels[s]; !ok {
		return "", errors.Wrapf(ErrInvalidStatus, "%q", raw)
	}
	return s, nil
}

// Label is the human-readable name of the status.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// PaymentCard is the only payment method tag.
const PaymentCard = "tarjeta"

// Order is a placed order with its price breakdown and lines.
type Order struct {
	ID int64
	// CustomerID is zero once the customer account has been deleted.
	CustomerID      int64
	CustomerName    string
	CreatedAt       time.Time
	Subtotal        decimal.Decimal
	Shipping        decimal.Decimal
	Total           decimal.Decimal
	ShippingAddress string
	PaymentMethod   string
	Bank            string
	Status          Status
	Lines           []Line
}

// PaymentLabel is the human-readable payment method.
func (o Order) PaymentLabel() string {
	if o.PaymentMethod == PaymentCard {
		return "Tarjeta de Crédito/Débito"
	}
	return o.PaymentMethod
}

// ItemCount sums the line quantities.
func (o Order) ItemCount() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}

// Line is one book of an order, priced at the moment of purchase.
type Line struct {
	ID        int64
	OrderID   int64
	BookID    int64
	BookTitle string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// FormatAddress renders the stored single-line shipping address.
func FormatAddress(s profile.Shipping) string {
	return fmt.Sprintf("%s, %s, C.P. %s", s.Address, s.City, s.PostalCode)
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create inserts the order and its lines, filling in generated IDs and
	// the creation time.
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id int64) (*Order, error)
	// ListByCustomer returns the customer's orders, newest first.
	ListByCustomer(ctx context.Context, customerID int64) ([]Order, error)
	// ListAll returns every order, newest first.
	ListAll(ctx context.Context) ([]Order, error)
	SetStatus(ctx context.Context, id int64, s Status) error
}

// Transactor runs fn in a single storage transaction. Repositories called
// with the ctx passed to fn take part in it.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CartStore is the part of the cart repository checkout needs.
type CartStore interface {
	ListForUpdate(ctx context.Context, userID int64) ([]cart.Line, error)
	Clear(ctx context.Context, userID int64) error
}

// ShippingStore saves the shipping details entered at checkout.
type ShippingStore interface {
	SaveShipping(ctx context.Context, userID int64, s profile.Shipping) error
}
