//go:build integration

package postgres

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xenking/logos-bookstore/internal/domain/auth"
	"github.com/xenking/logos-bookstore/internal/domain/cart"
	"github.com/xenking/logos-bookstore/internal/domain/catalog"
	"github.com/xenking/logos-bookstore/internal/domain/checkout"
	"github.com/xenking/logos-bookstore/internal/domain/order"
	"github.com/xenking/logos-bookstore/internal/domain/profile"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	os.Exit(testMain(m))
}

func testMain(m *testing.M) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "logos",
				"POSTGRES_PASSWORD": "logos",
				"POSTGRES_DB":       "logos",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("start postgres: %v", err)
	}
	defer func() { _ = c.Terminate(context.Background()) }()

	host, err := c.Host(ctx)
	if err != nil {
		log.Fatalf("postgres host: %v", err)
	}
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		log.Fatalf("postgres port: %v", err)
	}

	url := fmt.Sprintf("postgres://logos:logos@%s:%s/logos?sslmode=disable", host, port.Port())
	testPool, err = NewPool(ctx, url)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer testPool.Close()

	if err := RunMigrations(ctx, testPool); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	// Migrations are idempotent.
	if err := RunMigrations(ctx, testPool); err != nil {
		log.Fatalf("migrate twice: %v", err)
	}

	return m.Run()
}

type env struct {
	catalog  *CatalogRepository
	writer   *CatalogWriter
	carts    *CartRepository
	orders   *OrderRepository
	users    *UserRepository
	profiles *ProfileRepository
	tx       *Transactor
}

func newEnv(t *testing.T) env {
	t.Helper()
	_, err := testPool.Exec(context.Background(),
		`TRUNCATE order_lines, orders, cart_lines, books, categories, authors, profiles, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return env{
		catalog:  NewCatalogRepository(testPool),
		writer:   NewCatalogWriter(testPool),
		carts:    NewCartRepository(testPool),
		orders:   NewOrderRepository(testPool),
		users:    NewUserRepository(testPool),
		profiles: NewProfileRepository(testPool),
		tx:       NewTransactor(testPool),
	}
}

func (e env) book(t *testing.T, title string, price string) catalog.Book {
	t.Helper()
	ctx := context.Background()
	a := catalog.Author{FirstName: "Juan", LastName: "Rulfo"}
	require.NoError(t, e.writer.UpsertAuthor(ctx, &a))
	c := catalog.Category{Name: "Novela", Active: true}
	require.NoError(t, e.writer.UpsertCategory(ctx, &c))

	b := catalog.Book{
		Title:      title,
		Author:     catalog.Author{ID: a.ID},
		CategoryID: &c.ID,
		Price:      decimal.RequireFromString(price),
		Stock:      3,
		Active:     true,
	}
	created, err := e.writer.InsertBook(ctx, &b)
	require.NoError(t, err)
	require.True(t, created)
	return b
}

func (e env) user(t *testing.T, name string) auth.User {
	t.Helper()
	u := auth.User{Username: name, PasswordHash: "x"}
	require.NoError(t, e.users.Create(context.Background(), &u))
	return u
}

func (e env) orderService(t *testing.T) *order.Service {
	t.Helper()
	svc, err := order.NewService(e.orders, e.carts, e.profiles, e.tx)
	require.NoError(t, err)
	return svc
}

func validForm() checkout.Form {
	return checkout.Form{
		Address:    "Calle Luna 5",
		City:       "Comala",
		PostalCode: "28400",
		Bank:       "Banorte",
		CardName:   "Susana San Juan",
		CardNumber: "1234567890123456",
		Expiry:     "01/26",
		CVV:        "123",
	}
}

func TestCatalog(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	pp := e.book(t, "Pedro Páramo", "250.00")
	e.book(t, "El llano en llamas", "199.90")

	books, err := e.catalog.ListBooks(ctx, catalog.Filter{Query: "páramo", ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, pp.ID, books[0].ID)
	assert.Equal(t, "Rulfo", books[0].Author.LastName)
	assert.Equal(t, "Novela", books[0].CategoryName)
	assert.True(t, decimal.RequireFromString("250").Equal(books[0].Price))

	books, err = e.catalog.ListBooks(ctx, catalog.Filter{Query: "rulfo", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, books, 1)

	books, err = e.catalog.ListBooks(ctx, catalog.Filter{Query: "100%"})
	require.NoError(t, err)
	assert.Empty(t, books)

	dup := catalog.Book{Title: "PEDRO PÁRAMO", Author: pp.Author, Price: decimal.NewFromInt(1)}
	created, err := e.writer.InsertBook(ctx, &dup)
	require.NoError(t, err)
	assert.False(t, created)

	var keys []string
	require.NoError(t, e.writer.LoadBookKeys(ctx, func(k string) { keys = append(keys, k) }))
	assert.Contains(t, keys, catalog.Key("Juan", "Rulfo", "Pedro Páramo"))

	n, err := e.writer.CopyBooks(ctx, []catalog.Book{{
		Title:  "Antología",
		Author: pp.Author,
		Price:  decimal.RequireFromString("10.50"),
		Active: true,
	}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	cats, err := e.catalog.ListCategories(ctx, true)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "novela", cats[0].Slug)
}

func TestCart(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	b := e.book(t, "Pedro Páramo", "250.00")
	u := e.user(t, "susana")

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.carts.Increment(ctx, u.ID, b.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	lines, err := e.carts.List(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)

	require.Error(t, e.carts.SetQuantity(ctx, lines[0].ID, 0), "CHECK quantity >= 1")
	require.NoError(t, e.carts.SetQuantity(ctx, lines[0].ID, 2))
	require.ErrorIs(t, e.carts.SetQuantity(ctx, 9999, 2), cart.ErrNotFound)

	require.NoError(t, e.carts.Delete(ctx, u.ID, lines[0].ID))
	_, err = e.carts.Get(ctx, lines[0].ID)
	require.ErrorIs(t, err, cart.ErrNotFound)
}

func TestPlaceOrder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.book(t, "A", "100.00")
	b := e.book(t, "B", "50.00")
	u := e.user(t, "susana")
	p := auth.Principal{UserID: u.ID, Username: u.Username}

	_, err := e.carts.Increment(ctx, u.ID, a.ID)
	require.NoError(t, err)
	_, err = e.carts.Increment(ctx, u.ID, a.ID)
	require.NoError(t, err)
	_, err = e.carts.Increment(ctx, u.ID, b.ID)
	require.NoError(t, err)

	svc := e.orderService(t)
	id, err := svc.PlaceOrder(ctx, p, validForm())
	require.NoError(t, err)

	o, err := svc.Get(ctx, p, id)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(250).Equal(o.Subtotal))
	assert.True(t, decimal.NewFromInt(50).Equal(o.Shipping))
	assert.True(t, decimal.NewFromInt(300).Equal(o.Total))
	assert.Equal(t, order.StatusPaid, o.Status)
	assert.Equal(t, "susana", o.CustomerName)
	require.Len(t, o.Lines, 2)

	lines, err := e.carts.List(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	prof, err := e.profiles.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Comala", prof.City)

	// A second checkout finds the cart empty.
	_, err = svc.PlaceOrder(ctx, p, validForm())
	require.ErrorIs(t, err, order.ErrEmptyCart)

	_, err = svc.SetStatus(ctx, id, "enviado")
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, id, "pendiente")
	require.NoError(t, err)
	o, err = svc.Get(ctx, p, id)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, o.Status)

	require.ErrorIs(t, e.catalog.DeleteBook(ctx, a.ID), catalog.ErrBookReferenced)
	o, err = svc.Get(ctx, p, id)
	require.NoError(t, err)
	assert.Len(t, o.Lines, 2)
}

func TestPlaceOrder_ConcurrentCheckouts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	b := e.book(t, "A", "100.00")
	u := e.user(t, "susana")
	p := auth.Principal{UserID: u.ID, Username: u.Username}
	_, err := e.carts.Increment(ctx, u.ID, b.ID)
	require.NoError(t, err)

	svc := e.orderService(t)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.PlaceOrder(ctx, p, validForm())
		}()
	}
	wg.Wait()

	var placed, empty int
	for _, err := range errs {
		switch {
		case err == nil:
			placed++
		case errors.Is(err, order.ErrEmptyCart):
			empty++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, placed)
	assert.Equal(t, 1, empty)
}

func TestPlaceOrder_RollsBack(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	b := e.book(t, "A", "100.00")
	u := e.user(t, "susana")
	p := auth.Principal{UserID: u.ID, Username: u.Username}
	_, err := e.carts.Increment(ctx, u.ID, b.ID)
	require.NoError(t, err)

	// Break order creation after the profile update has run.
	_, err = testPool.Exec(ctx, `ALTER TABLE orders ADD CONSTRAINT orders_fail CHECK (bank <> 'FAIL')`)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = testPool.Exec(context.Background(), `ALTER TABLE orders DROP CONSTRAINT orders_fail`)
	})

	form := validForm()
	form.Bank = "FAIL"
	_, err = e.orderService(t).PlaceOrder(ctx, p, form)
	require.Error(t, err)

	lines, err := e.carts.List(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
	_, err = e.profiles.Get(ctx, u.ID)
	require.ErrorIs(t, err, profile.ErrNotFound)
	all, err := e.orders.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAccounts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "susana")

	dup := auth.User{Username: "susana", PasswordHash: "y"}
	require.ErrorIs(t, e.users.Create(ctx, &dup), auth.ErrUsernameTaken)

	require.NoError(t, e.profiles.Create(ctx, u.ID))
	require.NoError(t, e.profiles.Create(ctx, u.ID))
	require.NoError(t, e.profiles.GrantAdmin(ctx, u.ID))
	require.NoError(t, e.profiles.Save(ctx, &profile.Profile{UserID: u.ID, Phone: "555"}))

	accounts, err := e.users.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.True(t, accounts[0].Profile.IsAdmin)
	assert.Equal(t, "555", accounts[0].Profile.Phone)

	_, err = e.users.GetByUsername(ctx, "nadie")
	require.ErrorIs(t, err, auth.ErrUserNotFound)
}
