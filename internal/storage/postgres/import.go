package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/logos-bookstore/internal/domain/catalog"
)

const (
	upsertAuthorSQL = `INSERT INTO authors (first_name, last_name, biography, nationality, photo_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (first_name, last_name) DO UPDATE SET
			biography = COALESCE(NULLIF(EXCLUDED.biography, ''), authors.biography),
			nationality = COALESCE(NULLIF(EXCLUDED.nationality, ''), authors.nationality),
			photo_url = COALESCE(NULLIF(EXCLUDED.photo_url, ''), authors.photo_url)
		RETURNING id`

	upsertCategorySQL = `INSERT INTO categories (name, description, slug, parent_id, image_url, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE SET
			description = COALESCE(NULLIF(EXCLUDED.description, ''), categories.description)
		RETURNING id`

	insertBookSQL = `INSERT INTO books
		(title, author_id, category_id, description, price, stock, image_url, active, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (author_id, lower(title)) DO NOTHING
		RETURNING id, created_at`

	listBookKeysSQL = `SELECT a.first_name, a.last_name, b.title
		FROM books b JOIN authors a ON a.id = b.author_id`
)

var bookCopyColumns = []string{
	"title", "author_id", "category_id", "description", "price",
	"stock", "image_url", "active", "featured",
}

var _ catalog.Writer = (*CatalogWriter)(nil)

// CatalogWriter loads authors, categories and books. It backs the seed and
// ingest tools.
type CatalogWriter struct {
	pool *pgxpool.Pool
}

// NewCatalogWriter returns a CatalogWriter that uses the given pool.
func NewCatalogWriter(pool *pgxpool.Pool) *CatalogWriter {
	return &CatalogWriter{pool: pool}
}

// UpsertAuthor inserts a or refreshes its non-empty details.
func (w *CatalogWriter) UpsertAuthor(ctx context.Context, a *catalog.Author) error {
	err := conn(ctx, w.pool).QueryRow(ctx, upsertAuthorSQL,
		a.FirstName, a.LastName, a.Biography, a.Nationality, a.PhotoURL,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("upserting author %q: %w", a.FullName(), err)
	}
	return nil
}

// UpsertCategory inserts c or refreshes its description.
func (w *CatalogWriter) UpsertCategory(ctx context.Context, c *catalog.Category) error {
	if c.Slug == "" {
		c.Slug = catalog.Slugify(c.Name)
	}
	err := conn(ctx, w.pool).QueryRow(ctx, upsertCategorySQL,
		c.Name, c.Description, c.Slug, c.ParentID, c.ImageURL, c.Active,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("upserting category %q: %w", c.Name, err)
	}
	return nil
}

// InsertBook inserts b unless its author already has a book with that title.
func (w *CatalogWriter) InsertBook(ctx context.Context, b *catalog.Book) (bool, error) {
	err := conn(ctx, w.pool).QueryRow(ctx, insertBookSQL, bookCopyRow(b)...).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("inserting book %q: %w", b.Title, err)
	}
	return true, nil
}

// CopyBooks bulk-loads books with COPY. Any duplicate fails the whole batch,
// so callers only pass books known to be new.
func (w *CatalogWriter) CopyBooks(ctx context.Context, books []catalog.Book) (int64, error) {
	n, err := conn(ctx, w.pool).CopyFrom(ctx,
		pgx.Identifier{"books"},
		bookCopyColumns,
		pgx.CopyFromSlice(len(books), func(i int) ([]any, error) {
			return bookCopyRow(&books[i]), nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copying %d books: %w", len(books), err)
	}
	return n, nil
}

// LoadBookKeys calls fn with catalog.Key of every stored book.
func (w *CatalogWriter) LoadBookKeys(ctx context.Context, fn func(key string)) error {
	rows, err := conn(ctx, w.pool).Query(ctx, listBookKeysSQL)
	if err != nil {
		return fmt.Errorf("listing book keys: %w", err)
	}
	var first, last, title string
	_, err = pgx.ForEachRow(rows, []any{&first, &last, &title}, func() error {
		fn(catalog.Key(first, last, title))
		return nil
	})
	if err != nil {
		return fmt.Errorf("listing book keys: %w", err)
	}
	return nil
}

func bookCopyRow(b *catalog.Book) []any {
	return []any{
		b.Title, b.Author.ID, b.CategoryID, b.Description, b.Price,
		b.Stock, b.ImageURL, b.Active, b.Featured,
	}
}
