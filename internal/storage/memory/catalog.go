package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/xenking/logos-bookstore/internal/domain/catalog"
)

var (
	_ catalog.Repository = (*CatalogRepository)(nil)
	_ catalog.Writer     = (*CatalogRepository)(nil)
)

// CatalogRepository implements catalog.Repository and catalog.Writer.
type CatalogRepository struct {
	s *Store
}

// ListBooks returns books matching f, newest first.
func (r *CatalogRepository) ListBooks(ctx context.Context, f catalog.Filter) ([]catalog.Book, error) {
	defer r.s.lock(ctx)()
	d := &r.s.data

	q := strings.ToLower(f.Query)
	var out []catalog.Book
	for _, b := range d.books {
		b = d.hydrateBook(b)
		switch {
		case f.ActiveOnly && !b.Active:
			continue
		case f.FeaturedOnly && !b.Featured:
			continue
		case f.CategoryID != 0 && (b.CategoryID == nil || *b.CategoryID != f.CategoryID):
			continue
		case q != "" && !matchesQuery(b, q):
			continue
		}
		out = append(out, b)
	}

	slices.SortFunc(out, func(a, b catalog.Book) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func matchesQuery(b catalog.Book, q string) bool {
	for _, field := range []string{b.Title, b.Author.FirstName, b.Author.LastName, b.Description} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// GetBook returns a single book, active or not.
func (r *CatalogRepository) GetBook(ctx context.Context, id int64) (*catalog.Book, error) {
	defer r.s.lock(ctx)()
	d := &r.s.data

	b, ok := d.books[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	b = d.hydrateBook(b)
	return &b, nil
}

// ListCategories returns categories ordered by name.
func (r *CatalogRepository) ListCategories(ctx context.Context, activeOnly bool) ([]catalog.Category, error) {
	defer r.s.lock(ctx)()

	var out []catalog.Category
	for _, c := range r.s.data.categories {
		if activeOnly && !c.Active {
			continue
		}
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b catalog.Category) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

// DeleteBook removes a book and its cart lines unless an order references it.
func (r *CatalogRepository) DeleteBook(ctx context.Context, id int64) error {
	defer r.s.lock(ctx)()
	d := &r.s.data

	if _, ok := d.books[id]; !ok {
		return catalog.ErrNotFound
	}
	for _, o := range d.orders {
		for _, l := range o.Lines {
			if l.BookID == id {
				return catalog.ErrBookReferenced
			}
		}
	}
	for lineID, l := range d.cart {
		if l.BookID == id {
			delete(d.cart, lineID)
		}
	}
	delete(d.books, id)
	return nil
}

// UpsertAuthor matches on first and last name.
func (r *CatalogRepository) UpsertAuthor(ctx context.Context, a *catalog.Author) error {
	defer r.s.lock(ctx)()
	d := &r.s.data

	for id, existing := range d.authors {
		if existing.FirstName == a.FirstName && existing.LastName == a.LastName {
			a.ID = id
			existing.Biography = cmp.Or(a.Biography, existing.Biography)
			existing.Nationality = cmp.Or(a.Nationality, existing.Nationality)
			existing.PhotoURL = cmp.Or(a.PhotoURL, existing.PhotoURL)
			d.authors[id] = existing
			return nil
		}
	}
	d.seq.author++
	a.ID = d.seq.author
	d.authors[a.ID] = *a
	return nil
}

// UpsertCategory matches on name.
func (r *CatalogRepository) UpsertCategory(ctx context.Context, c *catalog.Category) error {
	defer r.s.lock(ctx)()
	d := &r.s.data

	if c.Slug == "" {
		c.Slug = catalog.Slugify(c.Name)
	}
	for id, existing := range d.categories {
		if existing.Name == c.Name {
			c.ID = id
			existing.Description = cmp.Or(c.Description, existing.Description)
			d.categories[id] = existing
			return nil
		}
		if existing.Slug == c.Slug {
			return fmt.Errorf("category slug %q already used by %q", c.Slug, existing.Name)
		}
	}
	d.seq.category++
	c.ID = d.seq.category
	d.categories[c.ID] = *c
	return nil
}

// InsertBook reports false when the author already has the title.
func (r *CatalogRepository) InsertBook(ctx context.Context, b *catalog.Book) (bool, error) {
	defer r.s.lock(ctx)()
	d := &r.s.data

	if _, ok := d.authors[b.Author.ID]; !ok {
		return false, fmt.Errorf("inserting book %q: author %d does not exist", b.Title, b.Author.ID)
	}
	title := strings.ToLower(b.Title)
	for _, existing := range d.books {
		if existing.Author.ID == b.Author.ID && strings.ToLower(existing.Title) == title {
			return false, nil
		}
	}

	d.seq.book++
	b.ID = d.seq.book
	b.CreatedAt = r.s.now()
	d.books[b.ID] = *b
	return true, nil
}
