package pricing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is an in-memory Source with per-item prices, injectable
// failures, and a fetch counter per item.
type fakeSource struct {
	mu     sync.Mutex
	prices map[Item]float64
	errs   map[Item]error
	calls  map[Item]int

	// block, when non-nil, is closed to release in-flight fetches.
	block chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		prices: make(map[Item]float64),
		errs:   make(map[Item]error),
		calls:  make(map[Item]int),
	}
}

func (s *fakeSource) Fetch(_ context.Context, item Item) (float64, error) {
	s.mu.Lock()
	s.calls[item]++
	block := s.block
	err := s.errs[item]
	price := s.prices[item]
	s.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return 0, err
	}
	return price, nil
}

func (s *fakeSource) set(item Item, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[item] = price
}

func (s *fakeSource) fail(item Item, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[item] = err
}

func (s *fakeSource) fetches(item Item) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[item]
}

// testClock is a settable clock for driving TTL expiry.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newCacheFixture(ttl time.Duration, opts ...CacheOption) (*Cache, *fakeSource, *testClock) {
	source := newFakeSource()
	clk := &testClock{now: time.Unix(1_700_000_000, 0)}
	opts = append([]CacheOption{WithTTL(ttl), WithClock(clk)}, opts...)
	return NewCache(source, opts...), source, clk
}

func TestCacheFetchesOnFirstCall(t *testing.T) {
	cache, source, _ := newCacheFixture(time.Minute)
	source.set(ItemEctoplasm, 1.5)

	price, err := cache.Price(context.Background(), ItemEctoplasm)
	require.NoError(t, err)
	assert.Equal(t, 1.5, price)
	assert.Equal(t, 1, source.fetches(ItemEctoplasm))
}

func TestCacheServesFreshWithoutFetching(t *testing.T) {
	cache, source, clk := newCacheFixture(time.Minute)
	source.set(ItemEctoplasm, 1.5)

	_, err := cache.Price(context.Background(), ItemEctoplasm)
	require.NoError(t, err)

	// Source changes, but the cached value is still fresh just inside the TTL.
	source.set(ItemEctoplasm, 9.9)
	clk.advance(time.Minute - time.Millisecond)

	price, err := cache.Price(context.Background(), ItemEctoplasm)
	require.NoError(t, err)
	assert.Equal(t, 1.5, price)
	assert.Equal(t, 1, source.fetches(ItemEctoplasm))
}

func TestCacheRefetchesAfterTTL(t *testing.T) {
	cache, source, clk := newCacheFixture(time.Minute)
	source.set(ItemEctoplasm, 1.5)

	_, err := cache.Price(context.Background(), ItemEctoplasm)
	require.NoError(t, err)

	source.set(ItemEctoplasm, 2.5)
	clk.advance(time.Minute + time.Millisecond)

	price, err := cache.Price(context.Background(), ItemEctoplasm)
	require.NoError(t, err)
	assert.Equal(t, 2.5, price)
	assert.Equal(t, 2, source.fetches(ItemEctoplasm))
}

func TestCacheValueAtExactTTLStillFresh(t *testing.T) {
	cache, source, clk := newCacheFixture(time.Minute)
	source.set(ItemEctoplasm, 1.5)

	_, err := cache.Price(context.Background(), ItemEctoplasm)
	require.NoError(t, err)

	clk.advance(time.Minute)

	_, err = cache.Price(context.Background(), ItemEctoplasm)
	require.NoError(t, err)
	assert.Equal(t, 1, source.fetches(ItemEctoplasm))
}

func TestCacheFailureDoesNotTouchOtherItems(t *testing.T) {
	cache, source, clk := newCacheFixture(time.Minute)
	source.set(ItemEctoplasm, 1.5)
	source.set(ItemRuneOfHolding, 5.0)

	_, err := cache.Price(context.Background(), ItemEctoplasm)
	require.NoError(t, err)
	_, err = cache.Price(context.Background(), ItemRuneOfHolding)
	require.NoError(t, err)

	clk.advance(2 * time.Minute)
	source.fail(ItemRuneOfHolding, errors.New("upstream down"))

	// The rune price fails, the ecto price refreshes normally.
	_, err = cache.Price(context.Background(), ItemRuneOfHolding)
	assert.ErrorIs(t, err, ErrPriceUnavailable)

	price, err := cache.Price(context.Background(), ItemEctoplasm)
	require.NoError(t, err)
	assert.Equal(t, 1.5, price)
}

func TestCacheFailedRefreshFailsByDefault(t *testing.T) {
	cache, source, clk := newCacheFixture(time.Minute)
	source.set(ItemEctoplasm, 1.5)

	_, err := cache.Price(context.Background(), ItemEctoplasm)
	require.NoError(t, err)

	clk.advance(2 * time.Minute)
	source.fail(ItemEctoplasm, errors.New("upstream down"))

	_, err = cache.Price(context.Background(), ItemEctoplasm)
	assert.ErrorIs(t, err, ErrPriceUnavailable)
}

func TestCacheServeStaleOptIn(t *testing.T) {
	cache, source, clk := newCacheFixture(time.Minute, WithServeStale(true))
	source.set(ItemEctoplasm, 1.5)

	_, err := cache.Price(context.Background(), ItemEctoplasm)
	require.NoError(t, err)

	clk.advance(2 * time.Minute)
	source.fail(ItemEctoplasm, errors.New("upstream down"))

	price, err := cache.Price(context.Background(), ItemEctoplasm)
	require.NoError(t, err)
	assert.Equal(t, 1.5, price)
}

func TestCacheServeStaleColdEntryStillFails(t *testing.T) {
	cache, source, _ := newCacheFixture(time.Minute, WithServeStale(true))
	source.fail(ItemEctoplasm, errors.New("upstream down"))

	_, err := cache.Price(context.Background(), ItemEctoplasm)
	assert.ErrorIs(t, err, ErrPriceUnavailable)
}

func TestCacheUnknownItem(t *testing.T) {
	cache, _, _ := newCacheFixture(time.Minute)

	_, err := cache.Price(context.Background(), Item(12345))
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestCacheConcurrentMissesShareOneFetch(t *testing.T) {
	cache, source, _ := newCacheFixture(time.Minute)
	source.set(ItemEctoplasm, 1.5)
	source.block = make(chan struct{})

	const callers = 10
	var wg sync.WaitGroup
	results := make([]float64, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cache.Price(context.Background(), ItemEctoplasm)
		}(i)
	}

	// Let the callers pile up on the in-flight fetch, then release it.
	time.Sleep(50 * time.Millisecond)
	close(source.block)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 1.5, results[i])
	}
	assert.Equal(t, 1, source.fetches(ItemEctoplasm))
}
