package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/logos-bookstore/internal/demo"
	"github.com/xenking/logos-bookstore/internal/domain/admin"
	"github.com/xenking/logos-bookstore/internal/domain/auth"
	"github.com/xenking/logos-bookstore/internal/domain/cart"
	"github.com/xenking/logos-bookstore/internal/domain/catalog"
	"github.com/xenking/logos-bookstore/internal/domain/order"
	"github.com/xenking/logos-bookstore/internal/domain/profile"
	"github.com/xenking/logos-bookstore/internal/handler"
	"github.com/xenking/logos-bookstore/internal/session"
	"github.com/xenking/logos-bookstore/internal/storage/memory"
	"github.com/xenking/logos-bookstore/internal/storage/postgres"
	"github.com/xenking/logos-bookstore/pkg/health"
	"github.com/xenking/logos-bookstore/pkg/httpmiddleware"
	"github.com/xenking/logos-bookstore/pkg/richtext"
)

// stores are the repositories of one storage backend.
type stores struct {
	catalog  catalog.Repository
	carts    cart.Repository
	orders   order.Repository
	users    auth.Repository
	profiles profile.Repository
	tx       order.Transactor
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("storage", cfg.Storage),
	)

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	var st stores
	switch cfg.Storage {
	case StorageMemory:
		s, err := openMemory(ctx, lg)
		if err != nil {
			return err
		}
		st = s
	default:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.PingCheck("postgres", pool))

		st = stores{
			catalog:  postgres.NewCatalogRepository(pool),
			carts:    postgres.NewCartRepository(pool),
			orders:   postgres.NewOrderRepository(pool),
			users:    postgres.NewUserRepository(pool),
			profiles: postgres.NewProfileRepository(pool),
			tx:       postgres.NewTransactor(pool),
		}
	}

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Domain services.
	catalogSvc := catalog.NewService(st.catalog)
	profileSvc := profile.NewService(st.profiles)
	authSvc := auth.NewService(st.users, profileSvc)
	cartSvc := cart.NewService(st.carts, st.catalog)
	orderSvc, err := order.NewService(st.orders, st.carts, st.profiles, st.tx,
		order.WithTracerProvider(m.TracerProvider()),
		order.WithMeterProvider(m.MeterProvider()),
	)
	if err != nil {
		return errors.Wrap(err, "create order service")
	}
	adminSvc := admin.NewService(orderSvc, st.users, st.catalog)

	sessions, err := session.NewManager(session.Config{
		Secret:       []byte(cfg.SessionSecret),
		TTL:          cfg.SessionTTL,
		CookieSecure: cfg.CookieSecure,
	})
	if err != nil {
		return errors.Wrap(err, "create session manager")
	}

	h, err := handler.NewHandler(handler.Services{
		Catalog:  catalogSvc,
		Cart:     cartSvc,
		Orders:   orderSvc,
		Admin:    adminSvc,
		Auth:     authSvc,
		Profiles: profileSvc,
	}, sessions, richtext.New())
	if err != nil {
		return errors.Wrap(err, "create handler")
	}

	// Mux: health endpoints + storefront pages on one server.
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/", h.Routes())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				RPS:   cfg.RateLimit.RPS,
				Burst: cfg.RateLimit.Burst,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("logos-storefront", m),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// openMemory builds an in-process store loaded with the demo catalog and
// accounts. Data is lost on exit.
func openMemory(ctx context.Context, lg *zap.Logger) (stores, error) {
	s := memory.New()
	stats, err := demo.Load(ctx, lg, s.Catalog(), s.Users(), s.Profiles(), demo.DefaultOptions)
	if err != nil {
		return stores{}, errors.Wrap(err, "load demo data")
	}
	lg.Info("Loaded demo data",
		zap.Int("books", stats.Books),
		zap.Int("users", stats.Users),
	)
	return stores{
		catalog:  s.Catalog(),
		carts:    s.Carts(),
		orders:   s.Orders(),
		users:    s.Users(),
		profiles: s.Profiles(),
		tx:       s,
	}, nil
}
