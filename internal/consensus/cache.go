package consensus

import (
	"math"
	"sync"
	"time"
)

const cacheBucket = 5 * time.Minute

// cacheKey buckets near-identical evaluations: price rounded to two decimals
// and time-to-resolution bucketed to five minutes.
type cacheKey struct {
	asset     string
	kind      string
	price     float64
	ttrBucket int64
}

func newCacheKey(req Request) cacheKey {
	return cacheKey{
		asset:     req.Asset,
		kind:      req.Kind,
		price:     math.Round(req.Market.Price*100) / 100,
		ttrBucket: int64(req.Market.TimeToResolution / cacheBucket),
	}
}

type cacheEntry struct {
	decision Decision
	storedAt time.Time
}

// decisionCache memoizes decisions for a short TTL so repeated evaluations of
// the same opportunity skip the source fan-out. Capacity-bounded, oldest out.
type decisionCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	entries map[cacheKey]cacheEntry
	order   []cacheKey

	hits   int
	misses int
}

func newDecisionCache(ttl time.Duration, maxEntries int) *decisionCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 256
	}
	return &decisionCache{
		ttl:     ttl,
		max:     maxEntries,
		entries: make(map[cacheKey]cacheEntry),
	}
}

func (c *decisionCache) get(key cacheKey, now time.Time) (Decision, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return Decision{}, false
	}
	if now.Sub(entry.storedAt) >= c.ttl {
		c.evict(key)
		c.misses++
		return Decision{}, false
	}
	c.hits++
	return entry.decision, true
}

func (c *decisionCache) put(key cacheKey, d Decision, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists {
		for len(c.entries) >= c.max && len(c.order) > 0 {
			c.evict(c.order[0])
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = cacheEntry{decision: d, storedAt: now}
}

// evict must be called with the lock held.
func (c *decisionCache) evict(key cacheKey) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *decisionCache) statsSnapshot() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
