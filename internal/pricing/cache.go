package pricing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"gamba-tracker-bot/internal/pkg/clock"
)

// DefaultTTL is how long a fetched price stays fresh.
const DefaultTTL = 30 * time.Minute

// entry holds the cached price of a single item. The mutex guards the
// (value, fetchedAt) pair so no reader ever observes a price paired with a
// mismatched fetch time. Entries live for the lifetime of the process.
type entry struct {
	mu        sync.Mutex
	value     float64
	fetchedAt time.Time
	valid     bool
}

// Cache returns item prices, refreshing from a Source only when the cached
// value is missing or older than the TTL. Refreshes happen synchronously on
// the call path; there is no background refresh. Concurrent callers hitting
// the same stale item share a single upstream fetch.
type Cache struct {
	source     Source
	clk        clock.Clock
	ttl        time.Duration
	serveStale bool
	logger     zerolog.Logger

	group   singleflight.Group
	mu      sync.Mutex
	entries map[Item]*entry
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// NewCache creates a price cache over the given source.
func NewCache(source Source, opts ...CacheOption) *Cache {
	c := &Cache{
		source:  source,
		clk:     clock.System{},
		ttl:     DefaultTTL,
		logger:  log.Logger,
		entries: make(map[Item]*entry),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTTL sets how long a fetched price stays fresh.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithClock sets the time source. Used in tests to control staleness.
func WithClock(clk clock.Clock) CacheOption {
	return func(c *Cache) {
		c.clk = clk
	}
}

// WithServeStale makes the cache return the previous cached price when a
// refresh fails, instead of failing with ErrPriceUnavailable. A cold entry
// still fails. Off by default: serving possibly-ancient data silently is
// worse than a loud error.
func WithServeStale(enabled bool) CacheOption {
	return func(c *Cache) {
		c.serveStale = enabled
	}
}

// WithCacheLogger sets the logger.
func WithCacheLogger(logger zerolog.Logger) CacheOption {
	return func(c *Cache) {
		c.logger = logger
	}
}

// entryFor returns the live entry for an item, creating it on first use.
func (c *Cache) entryFor(item Item) *entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[item]
	if !ok {
		e = &entry{}
		c.entries[item] = e
	}
	return e
}

// Price returns the item's current market price in gold. A missing or stale
// entry triggers exactly one fetch from the source; a fresh entry is served
// without any upstream call. On fetch failure the previous cached value is
// left untouched.
func (c *Cache) Price(ctx context.Context, item Item) (float64, error) {
	if !item.Known() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownItem, int(item))
	}

	e := c.entryFor(item)

	if v, ok := c.fresh(e); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(strconv.Itoa(int(item)), func() (any, error) {
		// Another caller may have refreshed while we waited on the group.
		if v, ok := c.fresh(e); ok {
			return v, nil
		}
		return c.refresh(ctx, item, e)
	})
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

// fresh returns the cached value if it is still within the TTL.
func (c *Cache) fresh(e *entry) (float64, bool) {
	now := c.clk.Now()
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.valid && now.Sub(e.fetchedAt) <= c.ttl {
		return e.value, true
	}
	return 0, false
}

// refresh fetches a new price and stores it together with its fetch time.
func (c *Cache) refresh(ctx context.Context, item Item, e *entry) (float64, error) {
	price, err := c.source.Fetch(ctx, item)
	if err != nil {
		e.mu.Lock()
		stale, hasStale := e.value, e.valid
		e.mu.Unlock()

		if c.serveStale && hasStale {
			c.logger.Warn().
				Err(err).
				Stringer("item", item).
				Float64("stale_price", stale).
				Msg("Price refresh failed, serving stale value")
			return stale, nil
		}

		if !errors.Is(err, ErrPriceUnavailable) {
			err = fmt.Errorf("%w: %v", ErrPriceUnavailable, err)
		}
		return 0, err
	}

	e.mu.Lock()
	e.value = price
	e.fetchedAt = c.clk.Now()
	e.valid = true
	e.mu.Unlock()

	c.logger.Debug().
		Stringer("item", item).
		Float64("price_gold", price).
		Msg("Price cache refreshed")

	return price, nil
}
