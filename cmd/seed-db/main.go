package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/logos-bookstore/internal/demo"
	"github.com/xenking/logos-bookstore/internal/storage/postgres"
)

func main() {
	var (
		databaseURL string
		opts        = demo.DefaultOptions
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&opts.AdminUsername, "admin-username", opts.AdminUsername, "staff account username")
	flag.StringVar(&opts.AdminPassword, "admin-password", opts.AdminPassword, "staff account password (or LOGOS_SEED_ADMIN_PASSWORD env)")
	flag.StringVar(&opts.CustomerPassword, "customer-password", opts.CustomerPassword, "password of the demo customers")
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
	if v := os.Getenv("LOGOS_SEED_ADMIN_PASSWORD"); v != "" {
		opts.AdminPassword = v
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, databaseURL, opts); err != nil {
		lg.Fatal("Seed failed", zap.Error(err))
	}

	lg.Info("Seed completed successfully")
}

func run(ctx context.Context, lg *zap.Logger, databaseURL string, opts demo.Options) error {
	lg.Info("Connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	lg.Info("Running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	stats, err := demo.Load(ctx, lg,
		postgres.NewCatalogWriter(pool),
		postgres.NewUserRepository(pool),
		postgres.NewProfileRepository(pool),
		opts,
	)
	if err != nil {
		return errors.Wrap(err, "load demo data")
	}

	lg.Info("Seeded demo data",
		zap.Int("authors", stats.Authors),
		zap.Int("categories", stats.Categories),
		zap.Int("books", stats.Books),
		zap.Int("users", stats.Users),
	)
	return nil
}
