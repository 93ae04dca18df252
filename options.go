package shopdex

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Engine.
type Option interface {
	apply(*engineConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*engineConfig)

func (f optionFunc) apply(c *engineConfig) { f(c) }

type engineConfig struct {
	cacheTTL     time.Duration // 0 = no cache
	unicodeFold  bool
	fetchTimeout time.Duration
	behaviors    BehaviorSource
	topTags      int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithSnapshotCache serves catalog snapshots from memory for up to ttl.
// Writes through a VersionedCatalog are picked up on the next call.
// Disabled by default: every call lists the catalog.
func WithSnapshotCache(ttl time.Duration) Option {
	return optionFunc(func(c *engineConfig) {
		c.cacheTTL = ttl
	})
}

// WithUnicodeFolding applies NFKC normalization before tokenizing, so
// full-width and compatibility characters match their ASCII forms.
func WithUnicodeFolding() Option {
	return optionFunc(func(c *engineConfig) {
		c.unicodeFold = true
	})
}

// WithFetchTimeout bounds each catalog fetch. Default: caller deadline only.
func WithFetchTimeout(d time.Duration) Option {
	return optionFunc(func(c *engineConfig) {
		c.fetchTimeout = d
	})
}

// WithBehaviors enables behavior tracking and personalized recommendations.
func WithBehaviors(b BehaviorSource) Option {
	return optionFunc(func(c *engineConfig) {
		c.behaviors = b
	})
}

// WithTopTags sets how many of a user's strongest tags drive personalization.
// Default: 5.
func WithTopTags(n int) Option {
	return optionFunc(func(c *engineConfig) {
		c.topTags = n
	})
}

// WithLogger enables structured logging for engine operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *engineConfig) {
		c.logger = l
	})
}

// WithPrometheus registers engine metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *engineConfig) {
		c.metricsReg = reg
	})
}
