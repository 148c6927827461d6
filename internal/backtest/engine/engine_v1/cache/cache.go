package cache

import (
	"sync"

	"github.com/rxtech-lab/intraday-backtester/internal/types"
	"github.com/rxtech-lab/intraday-backtester/pkg/errors"
)

// Key identifies the signal pipeline output of one trading day. Slippage is part of
// the key because projected open prices already include it.
type Key struct {
	Date        string
	Indicator   types.IndicatorSettings
	WarmupIndex int
	SlippagePct float64
}

// Entry holds everything upstream of the outcome resolver for one Key.
// Entries are shared between workers and must be treated as read-only.
type Entry struct {
	Snapshots   []types.SignalSnapshot
	Windows     []types.DirectionWindow
	Projections []types.WindowProjection
}

// BuildFunc computes the entry for a key on a cache miss.
type BuildFunc func() (Entry, error)

type Cache interface {
	// GetOrBuild returns the entry for key, calling build at most once per key.
	GetOrBuild(key Key, build BuildFunc) (Entry, error)
	// Len returns the number of keys seen
	Len() int
	Reset()
}

type slot struct {
	once  sync.Once
	entry Entry
	err   error
}

// SignalCache is a lazily populated, build-once cache safe for concurrent use.
type SignalCache struct {
	mu    sync.RWMutex
	slots map[Key]*slot
}

func NewSignalCache() Cache {
	return &SignalCache{
		slots: make(map[Key]*slot),
	}
}

// GetOrBuild implements Cache.
func (c *SignalCache) GetOrBuild(key Key, build BuildFunc) (Entry, error) {
	c.mu.RLock()
	s, ok := c.slots[key]
	c.mu.RUnlock()

	if !ok {
		c.mu.Lock()
		// Double-check after acquiring write lock
		s, ok = c.slots[key]
		if !ok {
			s = &slot{}
			c.slots[key] = s
		}
		c.mu.Unlock()
	}

	// concurrent callers for the same key block here until the first build returns
	// a panicking build is stored as a failed entry
	s.once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				s.entry = Entry{}
				s.err = errors.Newf(errors.ErrCodeCombinationFailed, "signal build panicked: %v", r)
			}
		}()

		s.entry, s.err = build()
	})

	return s.entry, s.err
}

// Len implements Cache.
func (c *SignalCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.slots)
}

// Reset implements Cache.
func (c *SignalCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.slots = make(map[Key]*slot)
}
