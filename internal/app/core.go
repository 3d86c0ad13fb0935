package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/repository/memory"
	pgrepo "github.com/utafrali/storefront/internal/repository/postgres"
	redisrepo "github.com/utafrali/storefront/internal/repository/redis"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/internal/store"
	"github.com/utafrali/storefront/pkg/database"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
)

const serviceName = "storefront"

// Core is the dependency graph shared by the HTTP server and the CLI: state
// backend, catalog client, event publisher and services.
type Core struct {
	KV        repository.KVStore
	State     *store.Container
	Catalog   *catalog.Client
	Publisher pkgkafka.Publisher

	CatalogService   *service.CatalogService
	CartService      *service.CartService
	FavoritesService *service.FavoritesService

	rdb  *redis.Client
	pool *pgxpool.Pool
}

// NewCore connects the configured state backend and builds the services.
func NewCore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Core, error) {
	c := &Core{}

	if err := c.openStore(ctx, cfg, logger); err != nil {
		return nil, err
	}

	if cfg.EventsEnabled() {
		c.Publisher = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		c.Publisher = pkgkafka.NewNoopPublisher(logger)
		logger.Info("kafka brokers not configured, domain events are dropped")
	}

	c.Catalog = catalog.NewClient(catalog.ClientConfig{
		BaseURL:    cfg.CatalogBaseURL,
		Timeout:    cfg.CatalogTimeout(),
		MaxRetries: cfg.CatalogMaxRetries,
	}, logger)

	c.State = store.NewContainer(c.KV, logger)
	producer := event.NewProducer(c.Publisher, logger)
	c.CatalogService = service.NewCatalogService(c.Catalog, c.State, logger)
	c.CartService = service.NewCartService(c.State, c.CatalogService, producer, logger)
	c.FavoritesService = service.NewFavoritesService(c.State, producer, logger)

	return c, nil
}

func (c *Core) openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		rc := database.DefaultRedisConfig()
		rc.Addr, rc.Password, rc.DB = cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB
		rdb, err := database.NewRedisClient(ctx, rc)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
		c.rdb = rdb
		c.KV = redisrepo.NewKVStore(rdb, cfg.StateTTL())

	case config.BackendPostgres:
		pc := database.DefaultPostgresConfig()
		pc.Host, pc.Port, pc.User, pc.Password = cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword
		pc.DBName, pc.SSLMode = cfg.PostgresDB, cfg.PostgresSSLMode
		pool, err := database.NewPostgresPool(ctx, &pc, logger)
		if err != nil {
			return err
		}
		if err := pgrepo.Migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return fmt.Errorf("run migrations: %w", err)
		}
		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, serviceName); err != nil {
			logger.Warn("failed to register pool metrics", slog.String("error", err.Error()))
		}
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
		logger.Info("connected to PostgreSQL",
			slog.String("host", cfg.PostgresHost),
			slog.String("db", cfg.PostgresDB),
		)
		c.pool = pool
		c.KV = pgrepo.NewKVStore(pool, cfg.StateTTL())

	case config.BackendMemory:
		c.KV = memory.NewKVStore(cfg.StateTTL())
		logger.Warn("using in-memory state store, state is lost on restart")

	default:
		return fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	return nil
}

// Close releases the publisher and the state backend.
func (c *Core) Close() error {
	var errs []error
	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close kafka producer: %w", err))
		}
	}
	if c.rdb != nil {
		if err := c.rdb.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if c.pool != nil {
		c.pool.Close()
	}
	return errors.Join(errs...)
}
