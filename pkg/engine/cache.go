package engine

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/yourusername/bgadvisor/internal/positionid"
)

// DefaultCacheSize is the default number of factor cache entries
const DefaultCacheSize = 1 << 16

// cacheEntry stores the factors of one board for one side
type cacheEntry struct {
	key     positionid.PositionKey
	side    Side // None marks an empty entry
	factors Factors
}

// cacheNode holds primary and secondary entries for two-way associative cache
type cacheNode struct {
	primary   cacheEntry
	secondary cacheEntry
}

// FactorCache is a thread-safe cache of board factors, shared by the
// rollout workers. Boards recur across rollouts of the same candidate,
// and blot exposure dominates the cost of a greedy move choice.
type FactorCache struct {
	entries  []cacheNode
	hashMask uint32

	lookups atomic.Uint64
	hits    atomic.Uint64
	adds    atomic.Uint64

	mu sync.RWMutex
}

// NewFactorCache creates a cache with room for size entries.
// Size is rounded up to a power of 2.
func NewFactorCache(size uint32) *FactorCache {
	if size > 1<<24 {
		size = 1 << 24
	}
	p := uint32(2)
	for p < size {
		p <<= 1
	}
	return &FactorCache{
		entries:  make([]cacheNode, p/2),
		hashMask: p/2 - 1,
	}
}

// Flush clears all entries from the cache
func (c *FactorCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	c.lookups.Store(0)
	c.hits.Store(0)
	c.adds.Store(0)
}

// hash computes the slot of a key using MurmurHash3-style mixing
func (c *FactorCache) hash(key positionid.PositionKey, side Side) uint32 {
	const c1 = 0xcc9e2d51
	const c2 = 0x1b873593

	mix := func(h, k uint32) uint32 {
		k *= c1
		k = (k << 15) | (k >> 17)
		k *= c2
		h ^= k
		h = (h << 13) | (h >> 19)
		return h*5 + 0xe6546b64
	}

	h := uint32(side)
	for i := 0; i+4 <= len(key); i += 4 {
		h = mix(h, binary.LittleEndian.Uint32(key[i:]))
	}
	h = mix(h, uint32(key[24])|uint32(key[25])<<8)

	// Finalization
	h ^= uint32(len(key))
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16

	return h & c.hashMask
}

// Factors returns BoardFactors(b, side), computing and caching it on a miss.
func (c *FactorCache) Factors(b Board, side Side) Factors {
	key := CanonicalKey(b)
	slot := c.hash(key, side)
	c.lookups.Add(1)

	c.mu.RLock()
	node := c.entries[slot]
	c.mu.RUnlock()

	if node.primary.side == side && node.primary.key == key {
		c.hits.Add(1)
		return node.primary.factors
	}
	if node.secondary.side == side && node.secondary.key == key {
		c.hits.Add(1)
		return node.secondary.factors
	}

	f := BoardFactors(b, side)

	c.mu.Lock()
	// Move primary to secondary, add new as primary
	n := &c.entries[slot]
	n.secondary = n.primary
	n.primary = cacheEntry{key: key, side: side, factors: f}
	c.mu.Unlock()
	c.adds.Add(1)

	return f
}

// Stats returns cache statistics
func (c *FactorCache) Stats() (lookups, hits, adds uint64) {
	return c.lookups.Load(), c.hits.Load(), c.adds.Load()
}

// HitRate returns the cache hit rate as a percentage
func (c *FactorCache) HitRate() float64 {
	lookups := c.lookups.Load()
	if lookups == 0 {
		return 0
	}
	return float64(c.hits.Load()) / float64(lookups) * 100
}
