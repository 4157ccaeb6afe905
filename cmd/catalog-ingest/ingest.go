package main

import (
	"context"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/logos-bookstore/internal/domain/catalog"
)

// sink is where ingested records are written. *postgres.CatalogWriter
// implements it.
type sink interface {
	catalog.Writer
	CopyBooks(ctx context.Context, books []catalog.Book) (int64, error)
}

// Stats counts what an ingest run did.
type Stats struct {
	Records    int
	Copied     int64
	Inserted   int
	Duplicates int
}

// ingester routes records either to a COPY batch or to a conflict-safe
// insert. Books the filter has never seen are definitely new and go to the
// batch; anything else may already exist and goes through InsertBook.
// ingester is not safe for concurrent use.
type ingester struct {
	lg        *zap.Logger
	sink      sink
	known     *bloom.BloomFilter
	batchSize int

	authors    map[string]int64
	categories map[string]int64
	batch      []catalog.Book
	pending    map[string]struct{}
	stats      Stats
}

func newIngester(lg *zap.Logger, s sink, known *bloom.BloomFilter, batchSize int) *ingester {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &ingester{
		lg:         lg,
		sink:       s,
		known:      known,
		batchSize:  batchSize,
		authors:    map[string]int64{},
		categories: map[string]int64{},
		pending:    map[string]struct{}{},
	}
}

func (in *ingester) add(ctx context.Context, r record) error {
	in.stats.Records++

	b := catalog.Book{
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		ImageURL:    r.ImageURL,
		Active:      true,
		Featured:    r.Featured,
	}
	var err error
	if b.Author, err = in.author(ctx, r.Author); err != nil {
		return err
	}
	if r.Category != "" {
		id, err := in.category(ctx, r.Category)
		if err != nil {
			return err
		}
		b.CategoryID = &id
	}

	key := r.key()
	if _, ok := in.pending[key]; ok {
		in.stats.Duplicates++
		return nil
	}
	if !in.known.TestAndAddString(key) {
		in.pending[key] = struct{}{}
		in.batch = append(in.batch, b)
		if len(in.batch) >= in.batchSize {
			return in.flush(ctx)
		}
		return nil
	}

	ok, err := in.sink.InsertBook(ctx, &b)
	if err != nil {
		return err
	}
	if ok {
		in.stats.Inserted++
	} else {
		in.stats.Duplicates++
	}
	return nil
}

func (in *ingester) flush(ctx context.Context) error {
	if len(in.batch) == 0 {
		return nil
	}
	n, err := in.sink.CopyBooks(ctx, in.batch)
	if err != nil {
		return err
	}
	in.stats.Copied += n
	in.lg.Info("Batch copied", zap.Int64("books", n), zap.Int64("total", in.stats.Copied))

	in.batch = in.batch[:0]
	clear(in.pending)
	return nil
}

func (in *ingester) author(ctx context.Context, a catalog.Author) (catalog.Author, error) {
	k := a.FirstName + "|" + a.LastName
	if id, ok := in.authors[k]; ok {
		a.ID = id
		return a, nil
	}
	if err := in.sink.UpsertAuthor(ctx, &a); err != nil {
		return a, errors.Wrap(err, "upsert author")
	}
	in.authors[k] = a.ID
	return a, nil
}

func (in *ingester) category(ctx context.Context, name string) (int64, error) {
	if id, ok := in.categories[name]; ok {
		return id, nil
	}
	c := catalog.Category{Name: name, Active: true}
	if err := in.sink.UpsertCategory(ctx, &c); err != nil {
		return 0, errors.Wrap(err, "upsert category")
	}
	in.categories[name] = c.ID
	return c.ID, nil
}
