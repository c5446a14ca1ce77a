package routing

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"cardlink/core"

	"github.com/cespare/xxhash/v2"
)

// Cache stores previously computed results keyed by RequestKey.
type Cache struct {
	mu        sync.RWMutex
	entries   map[uint64]Result
	order     []uint64 // insertion order, oldest first
	maxSize   int
	hits      int64
	misses    int64
	evictions int64
}

// NewCache creates a cache holding at most maxSize results.
func NewCache(maxSize int) *Cache {
	return &Cache{
		entries: make(map[uint64]Result),
		maxSize: maxSize,
	}
}

// RequestKey hashes every input that influences a routing result.
func RequestKey(req Request, margin float64) uint64 {
	d := xxhash.New()
	var buf [8]byte
	writeFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = d.Write(buf[:])
	}
	writeRect := func(r core.Rect) {
		writeFloat(r.X)
		writeFloat(r.Y)
		writeFloat(r.Width)
		writeFloat(r.Height)
	}

	writeRect(req.Source)
	writeRect(req.Target)
	writeFloat(float64(len(req.Obstacles)))
	for _, o := range req.Obstacles {
		writeRect(o)
	}
	writeFloat(margin)
	_, _ = d.WriteString(string(req.Style))
	if req.RouteAround {
		_, _ = d.Write([]byte{1})
	} else {
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

// Get retrieves a copy of a cached result.
func (c *Cache) Get(key uint64) (Result, bool) {
	c.mu.RLock()
	result, found := c.entries[key]
	c.mu.RUnlock()

	if !found {
		atomic.AddInt64(&c.misses, 1)
		return Result{}, false
	}
	atomic.AddInt64(&c.hits, 1)

	result.Points = append([]core.Point(nil), result.Points...)
	result.States = append([]State(nil), result.States...)
	result.Cached = true
	return result, true
}

// Put stores a result, evicting the oldest entry when full.
func (c *Cache) Put(key uint64, result Result) {
	if c.maxSize <= 0 {
		return
	}
	result.Points = append([]core.Point(nil), result.Points...)
	result.States = append([]State(nil), result.States...)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		for len(c.entries) >= c.maxSize && len(c.order) > 0 {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
			atomic.AddInt64(&c.evictions, 1)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = result
}

// Clear removes all entries and resets statistics.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[uint64]Result)
	c.order = nil
	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
	atomic.StoreInt64(&c.evictions, 0)
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses, evictions, size int) {
	c.mu.RLock()
	size = len(c.entries)
	c.mu.RUnlock()

	hits = int(atomic.LoadInt64(&c.hits))
	misses = int(atomic.LoadInt64(&c.misses))
	evictions = int(atomic.LoadInt64(&c.evictions))
	return hits, misses, evictions, size
}

// String returns a string representation of cache statistics.
func (c *Cache) String() string {
	hits, misses, evictions, size := c.Stats()
	hitRate := 0.0
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	return fmt.Sprintf("RouteCache[size=%d/%d, hits=%d, misses=%d, hitRate=%.1f%%, evictions=%d]",
		size, c.maxSize, hits, misses, hitRate, evictions)
}
