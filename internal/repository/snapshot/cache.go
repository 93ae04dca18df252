// Package snapshot caches immutable catalog snapshots between engine calls.
package snapshot

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/shopdex/internal/domain"
	domprod "github.com/kailas-cloud/shopdex/internal/domain/product"
)

// DefaultTTL bounds how long a snapshot is served without refetching.
const DefaultTTL = 30 * time.Second

// DefaultFetchTimeout bounds a shared fetch, which outlives any single caller.
const DefaultFetchTimeout = 10 * time.Second

// source is the catalog being cached (ISP).
type source interface {
	ListProducts(ctx context.Context) ([]domprod.Product, error)
}

// versioner is implemented by sources that bump a counter on every write.
type versioner interface {
	Version(ctx context.Context) (int64, error)
}

// Snapshot is one immutable catalog version.
type Snapshot struct {
	products []domprod.Product
	byID     map[string]domprod.Product
	version  int64
}

func newSnapshot(products []domprod.Product, version int64) *Snapshot {
	s := &Snapshot{
		products: slices.Clone(products),
		byID:     make(map[string]domprod.Product, len(products)),
		version:  version,
	}
	for _, p := range s.products {
		s.byID[p.ID()] = p
	}
	return s
}

// ListProducts returns the snapshot's products.
func (s *Snapshot) ListProducts(_ context.Context) ([]domprod.Product, error) {
	return slices.Clone(s.products), nil
}

// FindProduct returns a product of this snapshot or domain.ErrNotFound.
func (s *Snapshot) FindProduct(_ context.Context, id string) (domprod.Product, error) {
	p, ok := s.byID[id]
	if !ok {
		return domprod.Product{}, domain.ErrNotFound
	}
	return p, nil
}

// Len returns the number of products.
func (s *Snapshot) Len() int { return len(s.products) }

// Version returns the source version the snapshot was taken at.
func (s *Snapshot) Version() int64 { return s.version }

type entry struct {
	snap      *Snapshot
	fetchedAt time.Time
}

// Cache serves the last fetched snapshot for a TTL.
//
// Invalidate drops the cached snapshot and starts a new generation; a fetch
// begun in an older generation never overwrites a newer one. When the source
// keeps a version counter, a cached snapshot is also dropped as soon as the
// counter moves, which catches writes made by other processes.
type Cache struct {
	src          source
	ttl          time.Duration
	fetchTimeout time.Duration
	now        func() time.Time
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger

	mu  sync.Mutex
	cur *entry
	gen uint64
	sf  singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithFetchTimeout bounds each shared fetch. Non-positive values keep DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// New creates a snapshot cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly; may be nil.
func New(
	src source, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger, opts ...Option,
) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{
		src:          src,
		ttl:          ttl,
		fetchTimeout: DefaultFetchTimeout,
		now:          time.Now,
		cacheTotal:   cacheTotal,
		logger:       logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Pin returns one snapshot that stays fixed for the caller's whole operation.
func (c *Cache) Pin(ctx context.Context) (domprod.Catalog, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// ListProducts serves the current snapshot's products.
func (c *Cache) ListProducts(ctx context.Context) ([]domprod.Product, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.ListProducts(ctx)
}

// FindProduct looks a product up in the current snapshot.
func (c *Cache) FindProduct(ctx context.Context, id string) (domprod.Product, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return domprod.Product{}, err
	}
	return snap.FindProduct(ctx, id)
}

// Invalidate drops the cached snapshot. The next call refetches.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.gen++
	c.cur = nil
	c.mu.Unlock()
}

// Snapshot returns a fresh-enough snapshot, fetching one on miss.
// Concurrent misses within a generation share a single fetch. The fetch is
// detached from every caller's cancellation and bounded by the fetch timeout;
// a caller that gives up only fails its own call.
func (c *Cache) Snapshot(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	cur, gen := c.cur, c.gen
	c.mu.Unlock()

	if cur != nil && c.now().Sub(cur.fetchedAt) < c.ttl && !c.outdated(ctx, cur.snap) {
		c.incCache("hit")
		return cur.snap, nil
	}
	c.incCache("miss")

	ch := c.sf.DoChan(strconv.FormatUint(gen, 10), func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()
		return c.load(fetchCtx, gen)
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("snapshot wait: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err //nolint:wrapcheck // already wrapped in load
		}
		return res.Val.(*Snapshot), nil
	}
}

func (c *Cache) load(ctx context.Context, gen uint64) (*Snapshot, error) {
	var version int64
	if v, ok := c.src.(versioner); ok {
		// Read the version first: a write racing with the listing bumps it
		// past the stored value, so the next check refetches.
		n, err := v.Version(ctx)
		if err != nil {
			return nil, fmt.Errorf("snapshot version: %w", err)
		}
		version = n
	}

	products, err := c.src.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot list: %w", err)
	}
	snap := newSnapshot(products, version)

	c.mu.Lock()
	if c.gen == gen {
		c.cur = &entry{snap: snap, fetchedAt: c.now()}
	}
	c.mu.Unlock()

	c.logger.Debug("Catalog snapshot loaded",
		zap.Int("products", snap.Len()),
		zap.Int64("version", version),
	)
	return snap, nil
}

// outdated reports whether the source version moved past snap. Version read
// failures keep serving the cached snapshot until the TTL runs out.
func (c *Cache) outdated(ctx context.Context, snap *Snapshot) bool {
	v, ok := c.src.(versioner)
	if !ok {
		return false
	}
	n, err := v.Version(ctx)
	if err != nil {
		c.logger.Warn("Failed to check catalog version", zap.Error(err))
		return false
	}
	return n != snap.version
}

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
