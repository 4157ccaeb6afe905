// Package catalog holds the bookstore catalog: authors, categories and books.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested book, author or category does not exist.
	ErrNotFound = errors.New("book not found")
	// ErrBookReferenced is returned when deleting a book that order lines still point to.
	ErrBookReferenced = errors.New("book is referenced by orders")
)

// FeaturedLimit is the number of featured books shown on the home page.
const FeaturedLimit = 8

// Author wrote one or more books.
type Author struct {
	ID          int64
	FirstName   string
	LastName    string
	Biography   string
	Nationality string
	PhotoURL    string
}

// FullName returns "First Last", trimmed when the last name is empty.
func (a Author) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Category groups books. Categories may be nested through ParentID.
type Category struct {
	ID          int64
	Name        string
	Description string
	Slug        string
	ParentID    *int64
	ImageURL    string
	Active      bool
}

// Book is a catalog item available for purchase.
type Book struct {
	ID           int64
	Title        string
	Author       Author
	CategoryID   *int64
	CategoryName string
	Description  string
	Price        decimal.Decimal
	Stock        int
	ImageURL     string
	Active       bool
	Featured     bool
	CreatedAt    time.Time
}

// Filter narrows book listings. Zero values mean "no restriction".
type Filter struct {
	// Query matches title, author first/last name or description, case-insensitively.
	Query        string
	CategoryID   int64
	ActiveOnly   bool
	FeaturedOnly bool
	Limit        int
}

// Repository defines read and delete operations for the catalog.
type Repository interface {
	ListBooks(ctx context.Context, f Filter) ([]Book, error)
	GetBook(ctx context.Context, id int64) (*Book, error)
	ListCategories(ctx context.Context, activeOnly bool) ([]Category, error)
	// DeleteBook returns ErrBookReferenced when any order line references the book.
	DeleteBook(ctx context.Context, id int64) error
}

// Writer creates catalog entries. Seeding and bulk import use it; the
// storefront itself never writes the catalog.
type Writer interface {
	// UpsertAuthor matches on first and last name and fills in a.ID.
	UpsertAuthor(ctx context.Context, a *Author) error
	// UpsertCategory matches on name and fills in c.ID. An empty slug is
	// derived from the name.
	UpsertCategory(ctx context.Context, c *Category) error
	// InsertBook fills in b.ID and reports false, without error, when the
	// author already has a book with the same title (case-insensitively).
	InsertBook(ctx context.Context, b *Book) (bool, error)
}
