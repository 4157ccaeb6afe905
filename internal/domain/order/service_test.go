package order

import (
	"context"
	"maps"
	"slices"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/logos-bookstore/internal/domain/auth"
	"github.com/xenking/logos-bookstore/internal/domain/cart"
	"github.com/xenking/logos-bookstore/internal/domain/catalog"
	"github.com/xenking/logos-bookstore/internal/domain/checkout"
	"github.com/xenking/logos-bookstore/internal/domain/profile"
)

// --- Mock implementations ---

// fakeStore backs every repository the service needs and rolls back all of
// them when the transaction function fails.
type fakeStore struct {
	lines     map[int64][]cart.Line
	orders    map[int64]*Order
	shipping  map[int64]profile.Shipping
	nextOrder int64

	createErr error
	clearErr  error
	inTx      bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		lines:    make(map[int64][]cart.Line),
		orders:   make(map[int64]*Order),
		shipping: make(map[int64]profile.Shipping),
	}
}

func (f *fakeStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	lines := maps.Clone(f.lines)
	orders := maps.Clone(f.orders)
	shipping := maps.Clone(f.shipping)
	next := f.nextOrder

	f.inTx = true
	defer func() { f.inTx = false }()
	if err := fn(ctx); err != nil {
		f.lines, f.orders, f.shipping, f.nextOrder = lines, orders, shipping, next
		return err
	}
	return nil
}

func (f *fakeStore) ListForUpdate(_ context.Context, userID int64) ([]cart.Line, error) {
	if !f.inTx {
		return nil, errors.New("ListForUpdate outside transaction")
	}
	return slices.Clone(f.lines[userID]), nil
}

func (f *fakeStore) Clear(_ context.Context, userID int64) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	delete(f.lines, userID)
	return nil
}

func (f *fakeStore) SaveShipping(_ context.Context, userID int64, s profile.Shipping) error {
	f.shipping[userID] = s
	return nil
}

func (f *fakeStore) Create(_ context.Context, o *Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextOrder++
	o.ID = f.nextOrder
	for i := range o.Lines {
		o.Lines[i].ID = int64(i + 1)
		o.Lines[i].OrderID = o.ID
	}
	cp := *o
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeStore) Get(_ context.Context, id int64) (*Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStore) ListByCustomer(_ context.Context, customerID int64) ([]Order, error) {
	var out []Order
	for id := f.nextOrder; id > 0; id-- {
		if o, ok := f.orders[id]; ok && o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeStore) ListAll(_ context.Context) ([]Order, error) {
	var out []Order
	for id := f.nextOrder; id > 0; id-- {
		if o, ok := f.orders[id]; ok {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeStore) SetStatus(_ context.Context, id int64, s Status) error {
	o, ok := f.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = s
	return nil
}

// --- Helpers ---

var (
	customer = auth.Principal{UserID: 7, Username: "lector"}
	other    = auth.Principal{UserID: 8, Username: "otro"}
)

func cartLine(id int64, bookID int64, title string, price int64, qty int) cart.Line {
	return cart.Line{
		ID:     id,
		UserID: customer.UserID,
		Book: catalog.Book{
			ID:     bookID,
			Title:  title,
			Price:  decimal.NewFromInt(price),
			Active: true,
		},
		Quantity: qty,
	}
}

func validForm() checkout.Form {
	return checkout.Form{
		Address:    "Calle Mayor 10",
		City:       "Sevilla",
		PostalCode: "41001",
		Bank:       "BBVA",
		CardName:   "Lucía Gómez",
		CardNumber: "1234 5678 9012 3456",
		Expiry:     "01/26",
		CVV:        "123",
	}
}

func newTestService(t *testing.T, store *fakeStore) *Service {
	t.Helper()
	svc, err := NewService(store, store, store, store)
	require.NoError(t, err)
	return svc
}

// --- Tests ---

func TestPlaceOrder_Success(t *testing.T) {
	store := newFakeStore()
	store.lines[customer.UserID] = []cart.Line{
		cartLine(1, 100, "A", 100, 2),
		cartLine(2, 200, "B", 50, 1),
	}
	svc := newTestService(t, store)

	id, err := svc.PlaceOrder(context.Background(), customer, validForm())
	require.NoError(t, err)

	o, err := svc.Get(context.Background(), customer, id)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(250).Equal(o.Subtotal))
	assert.True(t, decimal.NewFromInt(50).Equal(o.Shipping))
	assert.True(t, decimal.NewFromInt(300).Equal(o.Total))
	assert.Equal(t, StatusPaid, o.Status)
	assert.Equal(t, PaymentCard, o.PaymentMethod)
	assert.Equal(t, "BBVA", o.Bank)
	assert.Equal(t, "Calle Mayor 10, Sevilla, C.P. 41001", o.ShippingAddress)

	require.Len(t, o.Lines, 2)
	sum := decimal.Zero
	for _, l := range o.Lines {
		assert.True(t, l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Equal(l.Subtotal))
		sum = sum.Add(l.Subtotal)
	}
	assert.True(t, sum.Equal(o.Subtotal))

	assert.Empty(t, store.lines[customer.UserID])
	assert.Equal(t, profile.Shipping{Address: "Calle Mayor 10", City: "Sevilla", PostalCode: "41001"},
		store.shipping[customer.UserID])
}

func TestPlaceOrder_FreeShipping(t *testing.T) {
	store := newFakeStore()
	store.lines[customer.UserID] = []cart.Line{cartLine(1, 100, "A", 250, 2)}
	svc := newTestService(t, store)

	id, err := svc.PlaceOrder(context.Background(), customer, validForm())
	require.NoError(t, err)

	o, err := svc.Get(context.Background(), customer, id)
	require.NoError(t, err)
	assert.True(t, o.Shipping.IsZero())
	assert.True(t, decimal.NewFromInt(500).Equal(o.Total))
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)

	_, err := svc.PlaceOrder(context.Background(), customer, validForm())
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, store.orders)
}

func TestPlaceOrder_ValidationFailure(t *testing.T) {
	store := newFakeStore()
	store.lines[customer.UserID] = []cart.Line{cartLine(1, 100, "A", 100, 1)}
	svc := newTestService(t, store)

	form := validForm()
	form.CardNumber = "1234 5678 9012"
	form.Expiry = "13/25"

	_, err := svc.PlaceOrder(context.Background(), customer, form)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{checkout.MsgCardNumber, checkout.MsgExpiry}, verr.Messages)
	assert.Len(t, verr.Cart.Lines, 1)
	assert.True(t, decimal.NewFromInt(150).Equal(verr.Cart.Totals.Total))

	assert.Empty(t, store.orders)
	assert.Len(t, store.lines[customer.UserID], 1)
	assert.Empty(t, store.shipping)
}

func TestPlaceOrder_RollsBackOnFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fakeStore)
	}{
		{"create fails", func(s *fakeStore) { s.createErr = errors.New("insert failed") }},
		{"clear fails", func(s *fakeStore) { s.clearErr = errors.New("delete failed") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.lines[customer.UserID] = []cart.Line{cartLine(1, 100, "A", 100, 1)}
			tt.setup(store)
			svc := newTestService(t, store)

			_, err := svc.PlaceOrder(context.Background(), customer, validForm())
			require.Error(t, err)

			assert.Empty(t, store.orders)
			assert.Empty(t, store.shipping)
			assert.Len(t, store.lines[customer.UserID], 1)
		})
	}
}

func TestPlaceOrder_Anonymous(t *testing.T) {
	svc := newTestService(t, newFakeStore())

	_, err := svc.PlaceOrder(context.Background(), auth.Anonymous, validForm())
	require.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestGet_OtherCustomer(t *testing.T) {
	store := newFakeStore()
	store.lines[customer.UserID] = []cart.Line{cartLine(1, 100, "A", 100, 1)}
	svc := newTestService(t, store)

	id, err := svc.PlaceOrder(context.Background(), customer, validForm())
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), other, id)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListMine(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)
	ctx := context.Background()

	var ids []int64
	for range 2 {
		store.lines[customer.UserID] = []cart.Line{cartLine(1, 100, "A", 100, 1)}
		id, err := svc.PlaceOrder(ctx, customer, validForm())
		require.NoError(t, err)
		ids = append(ids, id)
	}

	mine, err := svc.ListMine(ctx, customer)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, ids[1], mine[0].ID)
	assert.Equal(t, ids[0], mine[1].ID)

	theirs, err := svc.ListMine(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestSetStatus(t *testing.T) {
	store := newFakeStore()
	store.lines[customer.UserID] = []cart.Line{cartLine(1, 100, "A", 100, 1)}
	svc := newTestService(t, store)
	ctx := context.Background()

	id, err := svc.PlaceOrder(ctx, customer, validForm())
	require.NoError(t, err)

	st, err := svc.SetStatus(ctx, id, "enviado")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, st)

	// Transitions are not ordered: going back is allowed.
	_, err = svc.SetStatus(ctx, id, "pendiente")
	require.NoError(t, err)
	o, err := svc.Get(ctx, customer, id)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, o.Status)

	_, err = svc.SetStatus(ctx, id, "perdido")
	require.ErrorIs(t, err, ErrInvalidStatus)
	o, err = svc.Get(ctx, customer, id)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, o.Status)

	_, err = svc.SetStatus(ctx, 999, "pagado")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses() {
		got, err := ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
		assert.NotEqual(t, string(s), s.Label())
	}

	_, err := ParseStatus("PAGADO")
	require.ErrorIs(t, err, ErrInvalidStatus)
	_, err = ParseStatus("")
	require.ErrorIs(t, err, ErrInvalidStatus)
}
