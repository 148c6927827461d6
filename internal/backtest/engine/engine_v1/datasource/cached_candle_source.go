package datasource

import (
	"context"
	"sync"

	"github.com/rxtech-lab/intraday-backtester/internal/types"
)

type candleKey struct {
	symbol     string
	resolution Resolution
	date       string
}

// CachedCandleSource wraps a CandleSource and keeps every day it has loaded.
// Successful loads are cached; failures are not so a later call can retry.
type CachedCandleSource struct {
	underlying CandleSource
	cache      map[candleKey][]types.Candle
	mu         sync.RWMutex
}

// NewCachedCandleSource creates a new CachedCandleSource wrapping the given CandleSource.
func NewCachedCandleSource(underlying CandleSource) *CachedCandleSource {
	return &CachedCandleSource{
		underlying: underlying,
		cache:      make(map[candleKey][]types.Candle),
	}
}

// GetCandles implements CandleSource with caching.
func (c *CachedCandleSource) GetCandles(ctx context.Context, symbol string, resolution Resolution, date string) ([]types.Candle, error) {
	key := candleKey{symbol: symbol, resolution: resolution, date: date}

	c.mu.RLock()
	if candles, ok := c.cache[key]; ok {
		c.mu.RUnlock()

		return candles, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if candles, ok := c.cache[key]; ok {
		return candles, nil
	}

	candles, err := c.underlying.GetCandles(ctx, symbol, resolution, date)
	if err != nil {
		return nil, err
	}

	c.cache[key] = candles

	return candles, nil
}

// ClearCache drops every cached day.
func (c *CachedCandleSource) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[candleKey][]types.Candle)
}

// Close implements CandleSource.
func (c *CachedCandleSource) Close() error {
	return c.underlying.Close()
}
