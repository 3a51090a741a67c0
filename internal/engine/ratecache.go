package engine

import (
	"sync"
	"time"

	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
)

type ratePair struct {
	From domain.Currency
	To   domain.Currency
}

type rateEntry struct {
	rate     float64
	storedAt time.Time
}

// rateCache is the in-process exchange-rate cache, keyed by currency pair.
// It stores the resolved rate value only; fallback-tier and approximation
// metadata are deliberately not cached, so a hit is always served as the
// tier-agnostic best known rate. Entries are immutable once written and
// overwritten wholesale on refresh. Expiry is lazy: a stale entry is a miss.
type rateCache struct {
	mu      sync.Mutex
	entries map[ratePair]rateEntry
	now     func() time.Time
}

func newRateCache() *rateCache {
	return &rateCache{
		entries: make(map[ratePair]rateEntry),
		now:     time.Now,
	}
}

// get returns the cached rate for the pair when it is younger than maxAge.
func (c *rateCache) get(pair ratePair, maxAge time.Duration) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[pair]
	if !ok {
		return 0, false
	}
	if c.now().Sub(entry.storedAt) > maxAge {
		delete(c.entries, pair)
		return 0, false
	}
	return entry.rate, true
}

// set stores the rate for the pair, replacing any previous entry.
func (c *rateCache) set(pair ratePair, rate float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[pair] = rateEntry{rate: rate, storedAt: c.now()}
}
