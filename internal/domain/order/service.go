package order

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/logos-bookstore/internal/domain/auth"
	"github.com/xenking/logos-bookstore/internal/domain/cart"
	"github.com/xenking/logos-bookstore/internal/domain/checkout"
	"github.com/xenking/logos-bookstore/internal/domain/profile"
)

const instrumentationName = "github.com/xenking/logos-bookstore/internal/domain/order"

type options struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// Option configures a Service.
type Option func(*options)

// WithTracerProvider sets the provider of the checkout span.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// WithMeterProvider sets the provider of the order counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// Service implements checkout and the order status workflow.
type Service struct {
	orders   Repository
	carts    CartStore
	shipping ShippingStore
	tx       Transactor

	tracer             trace.Tracer
	placed             metric.Int64Counter
	validationFailures metric.Int64Counter
}

// NewService creates an order Service. Telemetry defaults to the global
// providers.
func NewService(
	orders Repository,
	carts CartStore,
	shipping ShippingStore,
	tx Transactor,
	opts ...Option,
) (*Service, error) {
	o := options{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	meter := o.meterProvider.Meter(instrumentationName)
	placed, err := meter.Int64Counter("orders.placed",
		metric.WithDescription("Orders committed by checkout"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "orders.placed counter")
	}
	failures, err := meter.Int64Counter("checkout.validation_failures",
		metric.WithDescription("Checkout submissions rejected by form validation"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "checkout.validation_failures counter")
	}

	return &Service{
		orders:             orders,
		carts:              carts,
		shipping:           shipping,
		tx:                 tx,
		tracer:             o.tracerProvider.Tracer(instrumentationName),
		placed:             placed,
		validationFailures: failures,
	}, nil
}

// PlaceOrder turns the caller's cart into a paid order. Reading the cart,
// saving the shipping details, creating the order and clearing the cart
// happen in one transaction; any failure leaves all of them untouched.
func (s *Service) PlaceOrder(ctx context.Context, p auth.Principal, form checkout.Form) (int64, error) {
	if err := p.RequireUser(); err != nil {
		return 0, err
	}

	ctx, span := s.tracer.Start(ctx, "order.PlaceOrder",
		trace.WithAttributes(attribute.Int64("user.id", p.UserID)),
	)
	defer span.End()

	form = form.Normalize()
	var id int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		lines, err := s.carts.ListForUpdate(ctx, p.UserID)
		if err != nil {
			return errors.Wrap(err, "lock cart")
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		totals := cart.ComputeTotals(lines)
		if res := checkout.Validate(form); !res.OK() {
			return &ValidationError{
				Messages: res.Errors,
				Cart:     cart.View{Lines: lines, Totals: totals},
			}
		}

		ship := profile.Shipping{
			Address:    form.Address,
			City:       form.City,
			PostalCode: form.PostalCode,
		}
		if err := s.shipping.SaveShipping(ctx, p.UserID, ship); err != nil {
			return errors.Wrap(err, "save shipping")
		}

		o := &Order{
			CustomerID:      p.UserID,
			CustomerName:    p.Username,
			Subtotal:        totals.Subtotal,
			Shipping:        totals.Shipping,
			Total:           totals.Total,
			ShippingAddress: FormatAddress(ship),
			PaymentMethod:   PaymentCard,
			Bank:            form.Bank,
			Status:          StatusPaid,
			Lines:           make([]Line, 0, len(lines)),
		}
		for _, l := range lines {
			o.Lines = append(o.Lines, Line{
				BookID:    l.Book.ID,
				BookTitle: l.Book.Title,
				Quantity:  l.Quantity,
				UnitPrice: l.Book.Price,
				Subtotal:  l.Subtotal(),
			})
		}
		if err := s.orders.Create(ctx, o); err != nil {
			return errors.Wrap(err, "create order")
		}

		if err := s.carts.Clear(ctx, p.UserID); err != nil {
			return errors.Wrap(err, "clear cart")
		}
		id = o.ID
		return nil
	})

	var verr *ValidationError
	switch {
	case err == nil:
		s.placed.Add(ctx, 1)
		span.SetAttributes(attribute.Int64("order.id", id))
		return id, nil
	case errors.As(err, &verr):
		s.validationFailures.Add(ctx, 1)
		span.SetAttributes(attribute.Int("checkout.errors", len(verr.Messages)))
		return 0, err
	case errors.Is(err, ErrEmptyCart):
		return 0, err
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "place order")
		return 0, err
	}
}

// Get returns one of the caller's orders. Orders of other customers are
// reported as ErrNotFound.
func (s *Service) Get(ctx context.Context, p auth.Principal, id int64) (*Order, error) {
	if err := p.RequireUser(); err != nil {
		return nil, err
	}
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != p.UserID {
		return nil, ErrNotFound
	}
	return o, nil
}

// ListMine returns the caller's orders, newest first.
func (s *Service) ListMine(ctx context.Context, p auth.Principal) ([]Order, error) {
	if err := p.RequireUser(); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListByCustomer(ctx, p.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

// ListAll returns every order, newest first. Callers check staff rights.
func (s *Service) ListAll(ctx context.Context) ([]Order, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list all orders")
	}
	return orders, nil
}

// SetStatus moves an order to any enumerated status. No transition order is
// enforced.
func (s *Service) SetStatus(ctx context.Context, id int64, raw string) (Status, error) {
	st, err := ParseStatus(raw)
	if err != nil {
		return "", err
	}
	if err := s.orders.SetStatus(ctx, id, st); err != nil {
		return "", err
	}
	return st, nil
}
