package goToken

import (
	"fmt"
	"sync"
	"testing"
)

func TestCachePutGet(t *testing.T) {
	c := NewMemoryCache(4)

	c.Put("a", 1)
	v, ok := c.TryGet("a")
	if !ok || v != 1 {
		t.Fatalf("TryGet(a) = %v, %v", v, ok)
	}
	if _, ok := c.TryGet("missing"); ok {
		t.Fatal("TryGet(missing) reported a hit")
	}
}

func TestCacheEvictsOldestFirst(t *testing.T) {
	c := NewMemoryCache(3)

	for i := 0; i < 4; i++ {
		c.Put(fmt.Sprintf("k%d", i), i)
	}

	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}
	if _, ok := c.TryGet("k0"); ok {
		t.Fatal("oldest entry k0 survived eviction")
	}
	for i := 1; i < 4; i++ {
		if _, ok := c.TryGet(fmt.Sprintf("k%d", i)); !ok {
			t.Fatalf("entry k%d evicted unexpectedly", i)
		}
	}
}

func TestCacheReplaceDoesNotEvict(t *testing.T) {
	c := NewMemoryCache(2)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 10)

	if c.Len() != 2 {
		t.Fatalf("Len = %d after replacement, want 2", c.Len())
	}
	if v, _ := c.TryGet("a"); v != 10 {
		t.Fatalf("TryGet(a) = %v, want 10", v)
	}

	// Replacement keeps the original insertion position, so a remains
	// the oldest entry and goes first on overflow.
	c.Put("c", 3)
	if _, ok := c.TryGet("a"); ok {
		t.Fatal("replaced entry a should still evict first")
	}
}

func TestCacheInvalidate(t *testing.T) {
	c := NewMemoryCache(4)
	c.Put("a", 1)
	c.Put("b", 2)

	c.Invalidate("a")
	if _, ok := c.TryGet("a"); ok {
		t.Fatal("invalidated entry still present")
	}

	c.InvalidateAll()
	if c.Len() != 0 {
		t.Fatalf("Len = %d after InvalidateAll, want 0", c.Len())
	}
}

func TestCacheBackgroundEviction(t *testing.T) {
	c := NewBackgroundEvictionCache(2)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	// The sweep may still be in flight; force it to completion.
	c.EvictSynchronously()

	if c.Len() != 2 {
		t.Fatalf("Len = %d after synchronous eviction, want 2", c.Len())
	}
	if _, ok := c.TryGet("a"); ok {
		t.Fatal("oldest entry a survived eviction")
	}
}

func TestCacheEvictionMetrics(t *testing.T) {
	m := NewMetrics()
	c := NewMemoryCache(1).UseMetrics(m)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	if m.Value(MetricCacheEviction) != 2 {
		t.Fatalf("evictions = %d, want 2", m.Value(MetricCacheEviction))
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := NewMemoryCache(64)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("g%d-k%d", g, i%32)
				c.Put(key, i)
				c.TryGet(key)
				if i%50 == 0 {
					c.Invalidate(key)
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 64 {
		t.Fatalf("Len = %d exceeds capacity", c.Len())
	}
}
