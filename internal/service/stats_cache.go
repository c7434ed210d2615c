package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/hrhub/internal/cache"
	"github.com/geocoder89/hrhub/internal/observability"
)

const (
	keyDashboardStats = "hrhub:stats:dashboard:v1"
	keyProjectStats   = "hrhub:stats:projects:v1"
)

// StatsCache fronts the aggregate counters. Any mutation that can move a counter
// calls Invalidate; per-user stats are never cached.
type StatsCache struct {
	store cache.Store
	ttl   time.Duration
	prom  *observability.Prom
	log   *slog.Logger
}

func NewStatsCache(store cache.Store, ttl time.Duration, prom *observability.Prom, log *slog.Logger) *StatsCache {
	if log == nil {
		log = slog.Default()
	}
	return &StatsCache{store: store, ttl: ttl, prom: prom, log: log}
}

func (c *StatsCache) load(ctx context.Context, key string, dest any, compute func(ctx context.Context) error) error {
	if c == nil || c.store == nil {
		return compute(ctx)
	}

	found, err := c.store.Get(ctx, key, dest)
	switch {
	case err != nil:
		c.prom.IncStatsCache(key, "error")
		c.log.WarnContext(ctx, "stats cache read failed", "key", key, "err", err)
	case found:
		c.prom.IncStatsCache(key, "hit")
		return nil
	default:
		c.prom.IncStatsCache(key, "miss")
	}

	if err := compute(ctx); err != nil {
		return err
	}

	if err := c.store.Set(ctx, key, dest, c.ttl); err != nil {
		c.log.WarnContext(ctx, "stats cache write failed", "key", key, "err", err)
	}
	return nil
}

func (c *StatsCache) Invalidate(ctx context.Context) {
	if c == nil || c.store == nil {
		return
	}
	if err := c.store.Delete(ctx, keyDashboardStats, keyProjectStats); err != nil {
		c.log.WarnContext(ctx, "stats cache invalidate failed", "err", err)
	}
}
