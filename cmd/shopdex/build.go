package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopdex/internal/config"
	"github.com/kailas-cloud/shopdex/internal/db"
	dbRedis "github.com/kailas-cloud/shopdex/internal/db/redis"
	"github.com/kailas-cloud/shopdex/internal/domain/term"
	"github.com/kailas-cloud/shopdex/internal/metrics"
	behaviorrepo "github.com/kailas-cloud/shopdex/internal/repository/behavior"
	"github.com/kailas-cloud/shopdex/internal/repository/breaker"
	"github.com/kailas-cloud/shopdex/internal/repository/memory"
	productrepo "github.com/kailas-cloud/shopdex/internal/repository/product"
	"github.com/kailas-cloud/shopdex/internal/repository/snapshot"
	cataloguc "github.com/kailas-cloud/shopdex/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/shopdex/internal/usecase/health"
	"github.com/kailas-cloud/shopdex/internal/usecase/recommend"
	searchuc "github.com/kailas-cloud/shopdex/internal/usecase/search"
)

// catalogStore is what both catalog drivers provide.
type catalogStore interface {
	searchuc.Catalog
	cataloguc.Repository
	Version(ctx context.Context) (int64, error)
}

// behaviorStore is what both behavior drivers provide.
type behaviorStore interface {
	recommend.BehaviorReader
	searchuc.BehaviorRecorder
}

type app struct {
	engine searchuc.Engine
	writer *cataloguc.Service
	health *healthuc.Service
	close  func()
}

// build assembles the engine: store -> breaker -> snapshot cache -> search service -> instrumented.
func build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	var (
		products  catalogStore
		behaviors behaviorStore
		pinger    healthuc.DBPinger
		closeFn   = func() {}
	)

	ttl := cfg.Recommend.BehaviorTTL()
	switch cfg.Database.Driver {
	case config.DriverValkey, config.DriverRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create database store: %w", err)
		}
		if err := waitForDB(ctx, store, cfg, logger); err != nil {
			store.Close()
			return nil, err
		}
		products = productrepo.New(store, cfg.Catalog.KeyPrefix)
		behaviors = behaviorrepo.New(store, cfg.Catalog.KeyPrefix, ttl)
		pinger = store
		closeFn = store.Close
	case config.DriverMemory:
		mem := memory.NewCatalog()
		products = mem
		behaviors = memory.NewBehaviors(ttl)
		pinger = mem
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	guarded := breaker.New(products, breaker.Settings{
		Name:             "catalog",
		FailureThreshold: uint32(cfg.Catalog.Breaker.FailureThreshold), //nolint:gosec // validated positive
		OpenTimeout:      time.Duration(cfg.Catalog.Breaker.OpenTimeoutSec) * time.Second,
		HalfOpenRequests: uint32(cfg.Catalog.Breaker.HalfOpenRequests), //nolint:gosec // validated positive
	}, logger)

	var (
		catalog     searchuc.Catalog = guarded
		invalidator cataloguc.Invalidator
	)
	if cfg.Catalog.Cache.Enabled {
		cache := snapshot.New(guarded, time.Duration(cfg.Catalog.Cache.TTLSec)*time.Second,
			metrics.SnapshotCacheTotal, logger, snapshot.WithFetchTimeout(cfg.Catalog.FetchTimeout()))
		catalog = cache
		invalidator = cache
	}

	selector := recommend.NewSelector(recommend.NewPersonalized(behaviors, cfg.Recommend.TopTags))
	svc := searchuc.New(catalog,
		searchuc.WithTokenizer(term.NewTokenizer(term.WithUnicodeFolding(cfg.Search.UnicodeFold))),
		searchuc.WithFetchTimeout(cfg.Catalog.FetchTimeout()),
		searchuc.WithRecommender(selector),
		searchuc.WithBehaviors(behaviors),
	)

	logger.Info("Engine assembled",
		zap.Bool("snapshot_cache", cfg.Catalog.Cache.Enabled),
		zap.Bool("unicode_fold", cfg.Search.UnicodeFold),
		zap.Duration("fetch_timeout", cfg.Catalog.FetchTimeout()),
	)

	return &app{
		engine: searchuc.NewInstrumented(svc),
		writer: cataloguc.New(products, invalidator),
		health: healthuc.New(pinger, guarded),
		close:  closeFn,
	}, nil
}

func waitForDB(ctx context.Context, store db.Store, cfg config.Config, logger *zap.Logger) error {
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database")
	return nil
}
