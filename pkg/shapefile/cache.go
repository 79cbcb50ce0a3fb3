package shapefile

import (
	"container/list"
	"sync"
)

// DefaultCacheSize is the number of results a ResultCache holds by default.
const DefaultCacheSize = 20

// ResultCache memoizes results by source string with LRU eviction.
//
// Entries are keyed by the source string alone: a changed file behind the same
// URL or path keeps returning the cached result until it is evicted or removed.
// Options passed alongside the source are not part of the key.
//
// Example:
//
//	cache := shapefile.NewResultCache(50)
//	reader, err := shapefile.NewReader(shapefile.WithCache(cache))
type ResultCache struct {
	capacity int
	entries  map[string]*cacheEntry
	lru      *list.List // most recent at front
	mu       sync.Mutex

	hits      int64
	misses    int64
	evictions int64

	metrics *cacheMetrics
}

// cacheEntry is a cached result and its position in the LRU list
type cacheEntry struct {
	source  string
	result  *Result
	element *list.Element
}

// NewResultCache creates a cache holding at most capacity results.
// A capacity of zero or less means DefaultCacheSize.
func NewResultCache(capacity int) *ResultCache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &ResultCache{
		capacity: capacity,
		entries:  make(map[string]*cacheEntry),
		lru:      list.New(),
	}
}

// Get returns the result cached for source and marks it most recently used.
func (c *ResultCache) Get(source string) (*Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[source]
	if !ok {
		c.misses++
		c.metrics.recordMiss()
		return nil, false
	}

	c.lru.MoveToFront(entry.element)
	c.hits++
	c.metrics.recordHit()
	return entry.result, true
}

// Set caches result for source, evicting the least recently used entry when
// the cache is full.
func (c *ResultCache) Set(source string, result *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[source]; ok {
		entry.result = result
		c.lru.MoveToFront(entry.element)
		return
	}

	for c.lru.Len() >= c.capacity {
		c.evictLRU()
	}

	entry := &cacheEntry{source: source, result: result}
	entry.element = c.lru.PushFront(entry)
	c.entries[source] = entry
	c.metrics.recordSet()
	c.metrics.updateSize(len(c.entries))
}

// evictLRU removes the least recently used entry.
// Must be called with c.mu locked.
func (c *ResultCache) evictLRU() {
	elem := c.lru.Back()
	if elem == nil {
		return
	}

	entry := elem.Value.(*cacheEntry)
	c.lru.Remove(elem)
	delete(c.entries, entry.source)
	c.evictions++
	c.metrics.recordEviction()
	c.metrics.updateSize(len(c.entries))
}

// Remove drops the entry for source, if any.
func (c *ResultCache) Remove(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[source]; ok {
		c.lru.Remove(entry.element)
		delete(c.entries, source)
		c.metrics.recordDelete()
		c.metrics.updateSize(len(c.entries))
	}
}

// Clear removes every entry. Counters are kept.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.lru.Init()
	c.metrics.updateSize(0)
}

// Stats returns cache statistics.
func (c *ResultCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{
		Entries:   len(c.entries),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// CacheStats holds cache counters.
type CacheStats struct {
	Entries   int   // results currently cached
	Capacity  int   // maximum number of results
	Hits      int64 // lookups answered from the cache
	Misses    int64 // lookups that found nothing
	Evictions int64 // entries dropped to make room
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
