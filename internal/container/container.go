package container

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"carcatalog/content/internal/client"
	"carcatalog/content/internal/config"
	"carcatalog/content/internal/domain/event"
	"carcatalog/content/internal/queue"
	"carcatalog/content/internal/service"
	"carcatalog/content/internal/state"
	"carcatalog/content/internal/store"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

var ErrRedisDisabled = errors.New("redis is disabled; set redis.enabled to watch for refresh events")

// Container holds all initialized components
type Container struct {
	Config     *config.Config
	Client     *client.Storyblok
	Aggregator *service.Aggregator
	Store      *store.Store

	// Set only when redis.enabled is true
	Queue        queue.Queue
	StateManager state.StateManager
	Refresher    *service.Refresher

	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	if err := ConfigureLogging(cfg.Log); err != nil {
		return nil, err
	}

	container := &Container{
		Config: cfg,
	}

	storyblokClient := client.NewStoryblokClient(cfg.Storyblok)
	container.Client = storyblokClient

	aggregator := service.NewAggregator(storyblokClient, cfg.Storyblok.RootPrefix, cfg.Storyblok.MaxWorkers)
	container.Aggregator = aggregator

	container.Store = store.New(aggregator, store.WithCategories(cfg.Catalog.Categories))

	if !cfg.Redis.Enabled {
		log.Debug("Redis disabled, refresh events unavailable")
		return container, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})
	container.redis = rdb

	// Test connection
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("✅ Connected to Redis successfully")

	redisQueue, err := queue.NewRedisQueue(ctx, rdb, cfg.Redis)
	if err != nil {
		container.Close()
		return nil, err
	}
	container.Queue = redisQueue

	stateManager := state.NewRedisStateManager(rdb)
	container.StateManager = stateManager

	container.Refresher = service.NewRefresher(
		container.Store,
		redisQueue,
		stateManager,
		cfg.Redis.ConsumerGroup,
		cfg.Redis.MinIdleTime,
	)

	return container, nil
}

// Watch warms the catalog and then refreshes it on every refresh event
// until ctx is done
func (c *Container) Watch(ctx context.Context) error {
	if c.Refresher == nil {
		return ErrRedisDisabled
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if brands := c.Store.GetAllBrands(ctx); brands == nil {
			log.Warnf("⚠️ Initial catalog load failed: %v", c.Store.LastError())
		}
		return nil
	})

	g.Go(func() error {
		return c.Refresher.RunWorkers(ctx, c.Config.Redis.Workers)
	})

	return g.Wait()
}

// PublishRefresh enqueues a refresh event for every watcher
func (c *Container) PublishRefresh(ctx context.Context, reason string) (string, error) {
	if c.Refresher == nil {
		return "", ErrRedisDisabled
	}
	return c.Refresher.Publish(ctx, event.NewRefreshEvent(reason))
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Debug("Shutting down container...")

	var errs []error
	if c.Client != nil {
		errs = append(errs, c.Client.Close())
	}
	if c.redis != nil {
		errs = append(errs, c.redis.Close())
	}

	log.Debug("Container shut down successfully")
	return errors.Join(errs...)
}

// ConfigureLogging applies the configured level and format to the global
// logger
func ConfigureLogging(cfg config.LogConfig) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	log.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("invalid log format %q: expected text or json", cfg.Format)
	}
	return nil
}
