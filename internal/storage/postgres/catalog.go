package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/logos-bookstore/internal/domain/catalog"
)

// bookColumns selects a book with its author and category name. Queries
// using it join books b, authors a and LEFT JOIN categories c.
const bookColumns = `b.id, b.title, b.description, b.price, b.stock, b.image_url,
		b.active, b.featured, b.created_at, b.category_id, COALESCE(c.name, ''),
		a.id, a.first_name, a.last_name, a.biography, a.nationality, a.photo_url`

const bookJoins = `FROM books b
		JOIN authors a ON a.id = b.author_id
		LEFT JOIN categories c ON c.id = b.category_id`

const (
	listBooksSQL = `SELECT ` + bookColumns + ` ` + bookJoins + `
		WHERE ($1::text = '' OR b.title ILIKE $2 OR a.first_name ILIKE $2
			OR a.last_name ILIKE $2 OR b.description ILIKE $2)
		AND ($3::bigint = 0 OR b.category_id = $3)
		AND (NOT $4::boolean OR b.active)
		AND (NOT $5::boolean OR b.featured)
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT NULLIF($6::int, 0)`

	getBookSQL = `SELECT ` + bookColumns + ` ` + bookJoins + ` WHERE b.id = $1`

	listCategoriesSQL = `SELECT id, name, description, slug, parent_id, image_url, active
		FROM categories WHERE (NOT $1::boolean OR active) ORDER BY name`

	deleteBookSQL = `DELETE FROM books WHERE id = $1`
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// ListBooks returns books matching f, newest first.
func (r *CatalogRepository) ListBooks(ctx context.Context, f catalog.Filter) ([]catalog.Book, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, listBooksSQL,
		f.Query, likePattern(f.Query), f.CategoryID, f.ActiveOnly, f.FeaturedOnly, f.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	return pgx.CollectRows(rows, scanBook)
}

// GetBook returns a single book by its identifier, active or not.
func (r *CatalogRepository) GetBook(ctx context.Context, id int64) (*catalog.Book, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, getBookSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting book %d: %w", id, err)
	}

	b, err := pgx.CollectExactlyOneRow(rows, scanBook)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting book %d: %w", id, err)
	}
	return &b, nil
}

// ListCategories returns categories ordered by name.
func (r *CatalogRepository) ListCategories(ctx context.Context, activeOnly bool) ([]catalog.Category, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, listCategoriesSQL, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, scanCategory)
}

// DeleteBook removes a book. Cart lines holding it go with it; order lines
// block the delete through their RESTRICT foreign key.
func (r *CatalogRepository) DeleteBook(ctx context.Context, id int64) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, deleteBookSQL, id)
	if err != nil {
		if pgErrorCode(err) == codeForeignKeyViolation {
			return catalog.ErrBookReferenced
		}
		return fmt.Errorf("deleting book %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// likePattern turns a search query into a substring ILIKE pattern.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

// bookDest returns scan destinations matching bookColumns.
func bookDest(b *catalog.Book) []any {
	return []any{
		&b.ID, &b.Title, &b.Description, &b.Price, &b.Stock, &b.ImageURL,
		&b.Active, &b.Featured, &b.CreatedAt, &b.CategoryID, &b.CategoryName,
		&b.Author.ID, &b.Author.FirstName, &b.Author.LastName,
		&b.Author.Biography, &b.Author.Nationality, &b.Author.PhotoURL,
	}
}

func scanBook(row pgx.CollectableRow) (catalog.Book, error) {
	var b catalog.Book
	err := row.Scan(bookDest(&b)...)
	return b, err
}

func scanCategory(row pgx.CollectableRow) (catalog.Category, error) {
	var c catalog.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Slug, &c.ParentID, &c.ImageURL, &c.Active)
	return c, err
}
