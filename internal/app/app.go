// Package app wires the price service together.
package app

import (
	"context"
	"fmt"

	"runetick/config"
	"runetick/internal/api"
	"runetick/internal/cache"
	"runetick/internal/live"
	"runetick/internal/market"
	"runetick/internal/metrics"
	"runetick/internal/scheduler"
	"runetick/internal/userstore"
	"runetick/pkg/osrsnews"
	"runetick/pkg/osrswiki"
	"runetick/pkg/storage"
	"runetick/pkg/storage/memory"
	"runetick/pkg/storage/postgres"
	"runetick/pkg/storage/s3"
	"runetick/pkg/storage/sqlite"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// Run starts the API server, the live feed and the scheduled refresh jobs,
// and blocks until ctx is cancelled or the server fails.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if err := cfg.Auth.Validate(); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	met := metrics.New(reg)

	// Cache shared by the price endpoints
	c, sweeper, closeCache, err := openCache(ctx, cfg.Cache, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	// Blob store behind the user documents
	blobs, closeBlobs, err := openBlobStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeBlobs()

	wiki := osrswiki.NewRESTClient(cfg.Wiki.BaseURL, cfg.Wiki.UserAgent, cfg.Wiki.Timeout)
	news := osrsnews.NewClient(cfg.Wiki.NewsURL, cfg.Wiki.UserAgent, cfg.Wiki.Timeout)

	svc := market.NewService(wiki, news, c, met, logger, market.Options{
		TTL:            cfg.Cache.TTL,
		RegulationsURL: cfg.Wiki.RegulationsURL,
	})
	users := userstore.New(blobs, logger)

	hub := live.NewHub(met, logger)
	go hub.Run(ctx)

	if cfg.Scheduler.Enabled {
		var sw scheduler.Sweeper
		if sweeper != nil {
			sw = sweeper
		}
		sched := scheduler.New(ctx, svc, hub, sw, met, logger)
		if err := sched.Register(cfg.Scheduler); err != nil {
			return err
		}
		go sched.WarmUp()
		sched.Start()
		defer sched.Stop()
	}

	server := api.New(cfg.Server, cfg.Auth, api.Deps{
		Market:   svc,
		Users:    users,
		Live:     hub,
		Metrics:  met,
		Gatherer: reg,
		Log:      logger,
	})
	return server.Run(ctx)
}

// openCache returns the configured cache. The in-process cache is also
// returned as the second value so expired entries can be swept.
func openCache(ctx context.Context, cfg config.CacheConfig, logger *zap.Logger) (cache.Cache, *cache.Memory, func(), error) {
	switch cfg.Backend {
	case "", "memory":
		m := cache.NewMemory()
		return m, m, func() {}, nil
	case "redis":
		client, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Info("redis cache connected", zap.String("addr", cfg.Redis.Addr))
		return cache.NewRedis(client, cfg.Redis.Prefix), nil, func() {
			if err := client.Close(); err != nil {
				logger.Warn("failed to close redis", zap.Error(err))
			}
		}, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

func openBlobStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.BlobStore, func(), error) {
	switch backend := cfg.Storage.Backend; backend {
	case "", "memory":
		logger.Warn("user documents are kept in memory and lost on restart")
		return memory.NewStore(), func() {}, nil

	case "s3":
		store, err := s3.New(ctx, s3.Config{
			Bucket:   cfg.Storage.S3.Bucket,
			Prefix:   cfg.Storage.S3.Prefix,
			Region:   cfg.Storage.S3.Region,
			Endpoint: cfg.Storage.S3.Endpoint,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open s3 store: %w", err)
		}
		return store, func() {}, nil

	case "postgres":
		client, err := postgres.InitializeAndMigrateBlobRecord(cfg.Postgres, cfg.Log.Environment, cfg.Log.Environment != "prod")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to DB: %w", err)
		}
		return postgres.NewBlobStore(client), func() {
			if err := client.Close(); err != nil {
				logger.Warn("failed to close postgres", zap.Error(err))
			}
		}, nil

	case "sqlite":
		store, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close sqlite", zap.Error(err))
			}
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
