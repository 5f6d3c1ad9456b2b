package container

import (
	"context"
	"fmt"

	"wbbot/parser/internal/client"
	"wbbot/parser/internal/config"
	"wbbot/parser/internal/proxy"
	"wbbot/parser/internal/queue"
	"wbbot/parser/internal/repository"
	"wbbot/parser/internal/service"
	"wbbot/parser/internal/state"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config       *config.Config
	Categories   client.CategoryResolver
	Filters      client.FilterResolver
	Catalog      client.CatalogFetcher
	Store        *queue.RedisStore
	StateManager state.StateManager
	Archive      repository.ProductRepository

	Service *service.Service

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{
		Config: cfg,
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info("✅ Connected to Redis successfully")

	c.redis = rdb
	c.Store = queue.NewRedisStore(rdb, cfg.Redis)
	c.StateManager = state.NewRedisStateManager(rdb)

	if cfg.Database.Enabled {
		db, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		c.db = db

		archive := repository.NewProductRepository(db)
		if err := archive.EnsureSchema(ctx); err != nil {
			c.Close()
			return nil, err
		}
		c.Archive = archive
		log.Info("✅ Product archive enabled")
	}

	proxySupplier := proxy.NewProxySupplier(ctx, cfg.Catalog.Proxies, cfg.Catalog.MenuURL, cfg.Catalog.Timeout)

	wb := client.NewWBClient(cfg.Catalog, proxySupplier)
	c.Categories = client.NewCategoryResolver(wb, cfg.Catalog.MenuURL)
	c.Filters = client.NewFilterResolver(wb, cfg.Catalog.FiltersURL)
	c.Catalog = client.NewCatalogFetcher(wb, c.Filters, cfg.Catalog)

	c.Service = service.NewService(
		c.Categories,
		c.Catalog,
		c.Store,
		c.StateManager,
		c.Archive,
		cfg.Ingest,
	)

	return c, nil
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Debug("Shutting down container...")

	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			return fmt.Errorf("failed to close Redis client: %w", err)
		}
	}
	return nil
}
