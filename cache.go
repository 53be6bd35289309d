package goToken

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// Cache is the bounded associative store consulted by Parser and
// Validator. Implementations must be safe for concurrent readers and
// writers. Misses are ordinary results, never errors.
type Cache interface {
	TryGet(key string) (any, bool)
	Put(key string, value any)
	Invalidate(key string)
	InvalidateAll()
	Len() int
}

type cacheEntry struct {
	key   string
	value any
}

// MemoryCache is an in-memory Cache with a hard entry cap and
// oldest-inserted-first eviction. With background eviction enabled, a Put
// that crosses the capacity boundary schedules the sweep on a separate
// goroutine instead of blocking the caller, so the size may transiently
// exceed maxSize by a small margin. EvictSynchronously exists for
// deterministic tests and for callers that need the bound enforced
// immediately.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*list.Element
	order   *list.List
	maxSize int

	background bool
	sweeping   atomic.Bool
	metrics    *Metrics
}

// NewMemoryCache returns a cache that evicts synchronously inside Put.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &MemoryCache{
		entries: make(map[string]*list.Element, maxSize),
		order:   list.New(),
		maxSize: maxSize,
	}
}

// NewBackgroundEvictionCache returns a cache whose capacity sweeps run on
// a background goroutine triggered opportunistically by Put.
func NewBackgroundEvictionCache(maxSize int) *MemoryCache {
	c := NewMemoryCache(maxSize)
	c.background = true
	return c
}

// UseMetrics installs a metrics sink for eviction counts.
func (c *MemoryCache) UseMetrics(m *Metrics) *MemoryCache {
	c.metrics = m
	return c
}

// TryGet returns the cached value for key, if present.
func (c *MemoryCache) TryGet(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return el.Value.(*cacheEntry).value, true
}

// Put inserts or replaces the value for key. Replacement keeps the
// original insertion position; only new keys can push the cache over
// capacity and trigger eviction.
func (c *MemoryCache) Put(key string, value any) {
	c.mu.Lock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).value = value
		c.mu.Unlock()
		return
	}

	c.entries[key] = c.order.PushBack(&cacheEntry{key: key, value: value})
	over := c.order.Len() > c.maxSize

	if over && !c.background {
		c.evictLocked()
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if over && c.sweeping.CompareAndSwap(false, true) {
		go func() {
			defer c.sweeping.Store(false)
			c.EvictSynchronously()
		}()
	}
}

// Invalidate removes a single entry.
func (c *MemoryCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.order.Remove(el)
		delete(c.entries, key)
	}
}

// InvalidateAll clears the cache.
func (c *MemoryCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element, c.maxSize)
	c.order.Init()
}

// Len returns the current entry count.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.order.Len()
}

// EvictSynchronously removes oldest-inserted entries until the cache is
// within capacity, on the caller's goroutine.
func (c *MemoryCache) EvictSynchronously() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictLocked()
}

func (c *MemoryCache) evictLocked() {
	for c.order.Len() > c.maxSize {
		front := c.order.Front()
		if front == nil {
			return
		}
		c.order.Remove(front)
		delete(c.entries, front.Value.(*cacheEntry).key)
		c.metrics.Inc(MetricCacheEviction)
	}
}
