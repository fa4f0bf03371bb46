package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/menukart/internal/domain/catalog"
	"github.com/xenking/menukart/internal/domain/money"
	"github.com/xenking/menukart/internal/domain/order"
	"github.com/xenking/menukart/internal/handler"
	"github.com/xenking/menukart/internal/shop"
	"github.com/xenking/menukart/internal/sink/amqp"
	"github.com/xenking/menukart/internal/storage/file"
	"github.com/xenking/menukart/internal/storage/postgres"
	"github.com/xenking/menukart/internal/storage/remote"
	"github.com/xenking/menukart/pkg/health"
	"github.com/xenking/menukart/pkg/httpmiddleware"
)

// Run creates all dependencies, loads the catalog, starts the HTTP server,
// and handles graceful shutdown. It is the single wiring point for the
// application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	src, closeSource, err := newSource(ctx, cfg, m, healthSvc)
	if err != nil {
		return err
	}
	defer closeSource()

	// Outbound sinks.
	var sinks []order.Sink
	if cfg.AMQP.URL != "" {
		sink, err := amqp.Dial(cfg.AMQP.URL, cfg.AMQP.Queue)
		if err != nil {
			return errors.Wrap(err, "connect checkout relay")
		}
		defer func() {
			if err := sink.Close(); err != nil {
				lg.Warn("Close checkout relay", zap.Error(err))
			}
		}()
		sinks = append(sinks, sink)
		lg.Info("Relaying checkouts", zap.String("queue", cfg.AMQP.Queue))
	}
	if cfg.Order.Destination == "" {
		lg.Warn("No order destination configured, checkout will fail")
	}

	// Domain services.
	formatter := money.New(cfg.Order.CurrencySymbol)
	orders := order.NewService(
		order.Formatter{Money: formatter, Header: cfg.Order.Header, Closing: cfg.Order.Closing},
		cfg.Order.BaseURL,
		cfg.Order.Destination,
		sinks...,
	)
	svc, err := shop.New(
		catalog.NewStore(catalog.WithTracerProvider(m.TracerProvider())),
		orders,
		shop.WithMeterProvider(m.MeterProvider()),
		shop.WithClearOnCheckout(cfg.Order.ClearOnCheckout),
	)
	if err != nil {
		return errors.Wrap(err, "create shop")
	}

	healthSvc.AddReadinessCheck("catalog", time.Second, health.FlagCheck(svc.Ready, catalog.ErrNotLoaded))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Router: health endpoints + API routes on one server.
	router := chi.NewRouter()
	router.Get("/livez", healthSvc.LiveEndpoint)
	router.Get("/readyz", healthSvc.ReadyEndpoint)
	handler.New(handler.Config{
		ImageBaseURL: cfg.ImageBaseURL,
		Money:        formatter,
		BusinessName: cfg.BusinessName,
	}, svc).Routes(router)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(router,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", httpmiddleware.HeaderRequestID},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			instrument(m),
			nameSpanByRoute(),
			httpmiddleware.LogRequests(),
		),
	}

	g, gCtx := errgroup.WithContext(ctx)

	// The server starts before the catalog arrives; readiness reports the
	// load. A failed load is logged and leaves the service unready.
	g.Go(func() error {
		if err := svc.Load(gCtx, src); err != nil {
			lg.Error("Catalog load failed", zap.Error(err))
			return nil
		}
		cats, _ := svc.Categories()
		lg.Info("Catalog loaded", zap.Int("categories", len(cats)))
		return nil
	})

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	g.Go(func() error {
		<-gCtx.Done()
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
		return nil
	})

	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})

	return g.Wait()
}

// newSource picks the catalog source from configuration and wraps it with
// the retry policy. The returned func releases source resources.
func newSource(ctx context.Context, cfg *Config, m *app.Telemetry, h *health.Health) (catalog.Source, func(), error) {
	var (
		src     catalog.Source
		closeFn = func() {}
		lg      = zctx.From(ctx)
	)
	switch {
	case cfg.Catalog.URL != "":
		lg.Info("Catalog source", zap.String("kind", "remote"), zap.String("url", cfg.Catalog.URL))
		src = remote.New(cfg.Catalog.URL, remote.Options{
			TracerProvider: m.TracerProvider(),
			MeterProvider:  m.MeterProvider(),
		})
	case cfg.Catalog.File != "":
		lg.Info("Catalog source", zap.String("kind", "file"), zap.String("path", cfg.Catalog.File))
		src = file.New(cfg.Catalog.File)
	case cfg.Catalog.DatabaseURL != "":
		lg.Info("Catalog source", zap.String("kind", "postgres"))
		pool, err := postgres.NewPool(ctx, cfg.Catalog.DatabaseURL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, errors.Wrap(err, "run migrations")
		}
		h.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
		src = postgres.NewCatalogRepository(pool)
		closeFn = pool.Close
	default:
		return nil, nil, errors.New("no catalog source configured")
	}

	return catalog.WithRetry(src, catalog.RetryConfig{
		Attempts:        cfg.Catalog.Attempts,
		Timeout:         cfg.Catalog.Timeout,
		InitialInterval: cfg.Catalog.Backoff,
	}), closeFn, nil
}
