package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/utafrali/storefront/internal/config"
	handler "github.com/utafrali/storefront/internal/handler/http"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/pkg/health"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/tracing"
)

const warmUpTimeout = 30 * time.Second

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	core           *Core
	scheduler      *cron.Cron
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(initCtx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTelEndpoint,
		SampleRate:     cfg.OTelSampleRate,
		Enabled:        cfg.OTelEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	core, err := NewCore(initCtx, cfg, logger)
	if err != nil {
		_ = tracerShutdown(context.Background())
		return nil, err
	}

	var refreshSchedule string
	if cfg.RefreshEnabled() {
		refreshSchedule = cfg.CatalogRefreshSchedule
	}
	purger, _ := core.KV.(repository.Purger)
	scheduler, err := newScheduler(refreshSchedule, core.CatalogService, purger, logger)
	if err != nil {
		_ = core.Close()
		_ = tracerShutdown(context.Background())
		return nil, err
	}

	router := handler.NewRouter(handler.Services{
		Catalog:   core.CatalogService,
		Cart:      core.CartService,
		Favorites: core.FavoritesService,
	}, newHealthHandler(core), logger, handler.RouterConfig{
		JWTSecret:      cfg.JWTSecret,
		Locales:        cfg.Locales(),
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		CORSOrigins:    cfg.CORSAllowedOrigins,
		PprofCIDRs:     cfg.PprofAllowedCIDRs,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		core:           core,
		scheduler:      scheduler,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

func newHealthHandler(core *Core) *health.Handler {
	h := health.NewHandler()
	h.Register("store", core.State.Ping)
	h.RegisterOptional("catalog", core.Catalog.Healthy)
	if p, ok := core.Publisher.(*pkgkafka.Producer); ok {
		h.RegisterOptional("kafka", p.Ping)
	}
	return h
}

// Run starts the HTTP server and the scheduler and blocks until the context
// is canceled.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// Warm the catalog cache so the first request can be served offline.
	g.Go(func() error {
		wctx, cancel := context.WithTimeout(gctx, warmUpTimeout)
		defer cancel()
		if n, err := a.core.CatalogService.RefreshCatalog(wctx); err != nil {
			a.logger.Warn("catalog warm-up failed", slog.String("error", err.Error()))
		} else {
			a.logger.Info("catalog warmed up", slog.Int("products", n))
		}
		return nil
	})

	a.scheduler.Start()

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			a.logger.Info("shutdown signal received")
		}
		return a.Shutdown()
	})

	return g.Wait()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	select {
	case <-a.scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		a.logger.Warn("scheduled jobs did not finish before shutdown deadline")
	}

	if err := a.core.Close(); err != nil {
		a.logger.Error("dependency close error", slog.String("error", err.Error()))
	}

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}
