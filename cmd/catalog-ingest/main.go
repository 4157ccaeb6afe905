package main

import (
	"bufio"
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/logos-bookstore/internal/storage/postgres"
)

const (
	bloomFPR      = 0.001
	maxLineSize   = 1 << 20
	progressEvery = 100_000
)

func main() {
	var (
		dataDir       string
		databaseURL   string
		batchSize     int
		bloomCapacity uint
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.jsonl.gz catalog feeds")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.IntVar(&batchSize, "batch-size", 5000, "books per COPY batch")
	flag.UintVar(&bloomCapacity, "bloom-capacity", 1_000_000, "expected number of distinct books")
	flag.Parse()

	lg, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		lg.Fatal("database URL is required: set --database-url or DATABASE_URL")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	stats, err := run(ctx, lg, dataDir, databaseURL, batchSize, bloomCapacity)
	if err != nil {
		lg.Fatal("Catalog ingest failed", zap.Error(err))
	}

	lg.Info("Catalog ingest completed successfully",
		zap.Int("records", stats.Records),
		zap.Int64("copied", stats.Copied),
		zap.Int("inserted", stats.Inserted),
		zap.Int("duplicates", stats.Duplicates),
	)
}

func run(ctx context.Context, lg *zap.Logger, dataDir, databaseURL string, batchSize int, capacity uint) (Stats, error) {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.jsonl.gz"))
	if err != nil {
		return Stats{}, errors.Wrap(err, "list feeds")
	}
	if len(files) == 0 {
		return Stats{}, errors.Errorf("no *.jsonl.gz feeds in %s", dataDir)
	}

	lg.Info("Connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return Stats{}, errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return Stats{}, errors.Wrap(err, "run migrations")
	}
	w := postgres.NewCatalogWriter(pool)

	known := bloom.NewWithEstimates(capacity, bloomFPR)
	var existing int
	if err := w.LoadBookKeys(ctx, func(key string) {
		known.AddString(key)
		existing++
	}); err != nil {
		return Stats{}, errors.Wrap(err, "load book keys")
	}
	lg.Info("Loaded existing books", zap.Int("books", existing), zap.Int("feeds", len(files)))

	in := newIngester(lg, w, known, batchSize)
	records := make(chan record, batchSize)

	g, gctx := errgroup.WithContext(ctx)
	readers, rctx := errgroup.WithContext(gctx)
	for _, f := range files {
		readers.Go(func() error {
			return streamFeed(rctx, lg, f, records)
		})
	}
	g.Go(func() error {
		defer close(records)
		return readers.Wait()
	})
	g.Go(func() error {
		for r := range records {
			if err := in.add(gctx, r); err != nil {
				return errors.Wrapf(err, "ingest %q", r.Title)
			}
			if in.stats.Records%progressEvery == 0 {
				lg.Info("Ingest progress", zap.Int("records", in.stats.Records))
			}
		}
		return in.flush(gctx)
	})

	if err := g.Wait(); err != nil {
		return in.stats, err
	}
	return in.stats, nil
}

// streamFeed decodes a gzip-compressed JSON-lines feed and sends every valid
// record to out. Malformed lines are logged and skipped.
func streamFeed(ctx context.Context, lg *zap.Logger, path string, out chan<- record) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	var (
		lineNo  int
		skipped int
	)
	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		r, err := decodeRecord(line)
		if err != nil {
			skipped++
			lg.Warn("Skipping malformed record",
				zap.String("file", path),
				zap.Int("line", lineNo),
				zap.Error(err),
			)
			continue
		}
		select {
		case out <- r:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	lg.Info("Feed read",
		zap.String("file", path),
		zap.Int("lines", lineNo),
		zap.Int("skipped", skipped),
	)
	return nil
}
