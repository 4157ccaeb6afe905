// Package memory implements every storefront repository in process memory.
// It backs local development without a database and the HTTP tests.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/xenking/logos-bookstore/internal/domain/auth"
	"github.com/xenking/logos-bookstore/internal/domain/catalog"
	"github.com/xenking/logos-bookstore/internal/domain/order"
	"github.com/xenking/logos-bookstore/internal/domain/profile"
)

type cartRow struct {
	ID       int64
	UserID   int64
	BookID   int64
	Quantity int
	AddedAt  time.Time
}

type sequences struct {
	author, category, book, user, cart, order, orderLine int64
}

type data struct {
	authors    map[int64]catalog.Author
	categories map[int64]catalog.Category
	books      map[int64]catalog.Book
	users      map[int64]auth.User
	profiles   map[int64]profile.Profile
	cart       map[int64]cartRow
	orders     map[int64]order.Order
	seq        sequences
}

func newData() data {
	return data{
		authors:    make(map[int64]catalog.Author),
		categories: make(map[int64]catalog.Category),
		books:      make(map[int64]catalog.Book),
		users:      make(map[int64]auth.User),
		profiles:   make(map[int64]profile.Profile),
		cart:       make(map[int64]cartRow),
		orders:     make(map[int64]order.Order),
	}
}

// clone copies every table. Stored values are never mutated in place, so
// copying the maps is enough to snapshot them.
func (d data) clone() data {
	return data{
		authors:    maps.Clone(d.authors),
		categories: maps.Clone(d.categories),
		books:      maps.Clone(d.books),
		users:      maps.Clone(d.users),
		profiles:   maps.Clone(d.profiles),
		cart:       maps.Clone(d.cart),
		orders:     maps.Clone(d.orders),
		seq:        d.seq,
	}
}

type txKey struct{}

var _ order.Transactor = (*Store)(nil)

// Store holds all tables behind one mutex. Transactions hold the mutex for
// their whole duration and restore a snapshot when they fail.
type Store struct {
	mu   sync.Mutex
	data data
	now  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		data: newData(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithinTx runs fn with exclusive access to the store. Nested calls join the
// outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lock acquires the store mutex unless ctx already belongs to one of its
// transactions.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Catalog returns the catalog repository and writer.
func (s *Store) Catalog() *CatalogRepository { return &CatalogRepository{s: s} }

// Carts returns the cart repository.
func (s *Store) Carts() *CartRepository { return &CartRepository{s: s} }

// Orders returns the order repository.
func (s *Store) Orders() *OrderRepository { return &OrderRepository{s: s} }

// Users returns the user repository.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Profiles returns the profile repository.
func (s *Store) Profiles() *ProfileRepository { return &ProfileRepository{s: s} }

// hydrateBook fills in the author and category name of b.
func (d *data) hydrateBook(b catalog.Book) catalog.Book {
	if a, ok := d.authors[b.Author.ID]; ok {
		b.Author = a
	}
	b.CategoryName = ""
	if b.CategoryID != nil {
		if c, ok := d.categories[*b.CategoryID]; ok {
			b.CategoryName = c.Name
		}
	}
	return b
}
