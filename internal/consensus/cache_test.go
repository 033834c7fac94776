package consensus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheKeyBucketing(t *testing.T) {
	base := Request{
		Asset: "BTC",
		Kind:  "latency",
		Market: MarketContext{
			Price:            0.654,
			TimeToResolution: 4 * time.Minute,
		},
	}

	t.Run("near identical requests share a key", func(t *testing.T) {
		other := base
		other.Market.Price = 0.651 // rounds to the same cent
		other.Market.TimeToResolution = 3 * time.Minute
		assert.Equal(t, newCacheKey(base), newCacheKey(other))
	})

	t.Run("a different cent is a different key", func(t *testing.T) {
		other := base
		other.Market.Price = 0.659
		assert.NotEqual(t, newCacheKey(base), newCacheKey(other))
	})

	t.Run("crossing a five minute bucket is a different key", func(t *testing.T) {
		other := base
		other.Market.TimeToResolution = 6 * time.Minute
		assert.NotEqual(t, newCacheKey(base), newCacheKey(other))
	})
}

func TestDecisionCacheTTL(t *testing.T) {
	c := newDecisionCache(60*time.Second, 16)
	now := time.Now()
	key := newCacheKey(Request{Asset: "BTC", Kind: "latency"})
	c.put(key, Decision{ID: "d1"}, now)

	d, ok := c.get(key, now.Add(59*time.Second))
	assert.True(t, ok)
	assert.Equal(t, "d1", d.ID)

	_, ok = c.get(key, now.Add(60*time.Second))
	assert.False(t, ok)

	hits, misses := c.statsSnapshot()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestDecisionCacheEviction(t *testing.T) {
	c := newDecisionCache(time.Minute, 2)
	now := time.Now()
	k1 := newCacheKey(Request{Asset: "A", Kind: "latency"})
	k2 := newCacheKey(Request{Asset: "B", Kind: "latency"})
	k3 := newCacheKey(Request{Asset: "C", Kind: "latency"})

	c.put(k1, Decision{ID: "d1"}, now)
	c.put(k2, Decision{ID: "d2"}, now)
	c.put(k3, Decision{ID: "d3"}, now)

	_, ok := c.get(k1, now)
	assert.False(t, ok, "oldest entry should be evicted")
	_, ok = c.get(k2, now)
	assert.True(t, ok)
	_, ok = c.get(k3, now)
	assert.True(t, ok)
}

func TestDecisionCacheOverwriteKeepsOrder(t *testing.T) {
	c := newDecisionCache(time.Minute, 2)
	now := time.Now()
	k1 := newCacheKey(Request{Asset: "A", Kind: "latency"})
	c.put(k1, Decision{ID: "d1"}, now)
	c.put(k1, Decision{ID: "d1b"}, now)
	assert.Len(t, c.order, 1)

	d, ok := c.get(k1, now)
	assert.True(t, ok)
	assert.Equal(t, "d1b", d.ID)
}
