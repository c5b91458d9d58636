package marketdata

import (
	"context"
	"sync"
	"time"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
	"github.com/kyungsooNa/Investment-sub000/internal/marketclock"
	"github.com/kyungsooNa/Investment-sub000/pkg/logger"
	"github.com/kyungsooNa/Investment-sub000/pkg/redis"
)

// Cached decorates a MarketDataPort with a two-level cache (memory → Redis).
// 현재가(CurrentQuote)는 절대 캐시하지 않는다
type Cached struct {
	inner contracts.MarketDataPort
	cache *redis.Cache
	clock contracts.MarketClock
	log   *logger.Logger

	mu  sync.Mutex
	mem map[string]memEntry
}

type memEntry struct {
	value   interface{}
	expires time.Time
}

var _ contracts.MarketDataPort = (*Cached)(nil)

// NewCached wraps inner. cache may wrap a disabled Redis client (memory only).
func NewCached(inner contracts.MarketDataPort, cache *redis.Cache, clock contracts.MarketClock, log *logger.Logger) *Cached {
	return &Cached{
		inner: inner,
		cache: cache,
		clock: clock,
		log:   log.WithField("component", "marketdata_cache"),
		mem:   make(map[string]memEntry),
	}
}

// CurrentQuote always hits the upstream
func (c *Cached) CurrentQuote(ctx context.Context, code string) (contracts.Quote, error) {
	return c.inner.CurrentQuote(ctx, code)
}

// RecentDailyBars caches per (code, limit, date)
func (c *Cached) RecentDailyBars(ctx context.Context, code string, limit int) (contracts.Bars, error) {
	key := redis.DailyBarsKey(code, limit, marketclock.Today(c.clock))
	return cached(ctx, c, key, redis.TTLDailyBars, func() (contracts.Bars, error) {
		return c.inner.RecentDailyBars(ctx, code, limit)
	})
}

// TopTradedValue caches the traded-value ranking
func (c *Cached) TopTradedValue(ctx context.Context) ([]contracts.RankedSymbol, error) {
	return cached(ctx, c, redis.RankingKey("traded_value"), redis.TTLRanking, func() ([]contracts.RankedSymbol, error) {
		return c.inner.TopTradedValue(ctx)
	})
}

// TopGainers caches the gainers ranking
func (c *Cached) TopGainers(ctx context.Context) ([]contracts.RankedSymbol, error) {
	return cached(ctx, c, redis.RankingKey("gainers"), redis.TTLRanking, func() ([]contracts.RankedSymbol, error) {
		return c.inner.TopGainers(ctx)
	})
}

// TopVolume caches the volume ranking
func (c *Cached) TopVolume(ctx context.Context) ([]contracts.RankedSymbol, error) {
	return cached(ctx, c, redis.RankingKey("volume"), redis.TTLRanking, func() ([]contracts.RankedSymbol, error) {
		return c.inner.TopVolume(ctx)
	})
}

// FinancialRatio caches per (code, date)
func (c *Cached) FinancialRatio(ctx context.Context, code string) (contracts.FinancialRatio, error) {
	key := redis.FinancialKey(code, marketclock.Today(c.clock))
	return cached(ctx, c, key, redis.TTLFinancial, func() (contracts.FinancialRatio, error) {
		return c.inner.FinancialRatio(ctx, code)
	})
}

// cached: memory → Redis → upstream. 오류 응답은 캐시하지 않는다
func cached[T any](ctx context.Context, c *Cached, key string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	now := c.clock.Now()

	c.mu.Lock()
	if e, ok := c.mem[key]; ok {
		if now.Before(e.expires) {
			c.mu.Unlock()
			return e.value.(T), nil
		}
		delete(c.mem, key)
	}
	c.mu.Unlock()

	var value T
	found, err := c.cache.Get(ctx, key, &value)
	if err != nil {
		c.log.WithField("key", key).WithError(err).Warn("redis cache read failed")
	}
	if found {
		c.remember(key, value, now.Add(ttl))
		return value, nil
	}

	value, err = fetch()
	if err != nil {
		return value, err
	}

	c.remember(key, value, now.Add(ttl))
	if err := c.cache.Set(ctx, key, value, ttl); err != nil {
		c.log.WithField("key", key).WithError(err).Warn("redis cache write failed")
	}
	return value, nil
}

func (c *Cached) remember(key string, value interface{}, expires time.Time) {
	c.mu.Lock()
	c.mem[key] = memEntry{value: value, expires: expires}
	c.mu.Unlock()
}
