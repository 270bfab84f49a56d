package reader

import (
	"strconv"
	"sync"

	"github.com/chirst/paged"
	"github.com/segmentio/datastructures/v2/cache"
	"golang.org/x/sync/singleflight"
)

// slot is one pooled cache entry: the page contents plus the pin that
// tracks how many outstanding Refs are borrowing it.
type slot[T any] struct {
	page Page[T]
	pin  *pin
}

// Cache is a bounded, concurrent pool of pages of T records, keyed by
// global page index. GetOrInsert is the only way in: a hit returns a Ref
// pinning the existing slot; a miss loads the page (via init, run at most
// once per key even under concurrent callers) and, if the pool is full,
// reclaims the least-recently-used slot that nothing is currently
// pinning. If every slot is pinned, GetOrInsert returns ErrOutOfMemory
// rather than growing without bound.
type Cache[T any] struct {
	capacity int
	metrics  *CacheMetrics

	mu       sync.RWMutex
	slots    map[uint32]*slot[T]
	unpinned cache.LRU[uint32, struct{}] // tracks page indices eligible for eviction

	group singleflight.Group
}

// Option configures a Cache at construction.
type Option[T any] func(*Cache[T])

// WithCapacity bounds how many pages a Cache holds resident at once. A
// Cache constructed without WithCapacity has no bound (capacity 0 means
// unbounded), matching the teacher's own nil-capacity-means-unbounded
// convention in pager/cache's lruPageCache.
func WithCapacity[T any](n int) Option[T] {
	return func(c *Cache[T]) { c.capacity = n }
}

// WithMetrics attaches a CacheMetrics to the cache. Without this option, a
// Cache uses a shared no-op sink so the hot path never needs a nil check.
func WithMetrics[T any](m *CacheMetrics) Option[T] {
	return func(c *Cache[T]) { c.metrics = m }
}

// NewCache returns an empty cache ready to serve pages of T records.
func NewCache[T any](opts ...Option[T]) *Cache[T] {
	c := &Cache[T]{
		slots:   make(map[uint32]*slot[T]),
		metrics: noopMetrics,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// lookup returns the slot at pageIndex if resident, without pinning it:
// callers pin their own independent Ref via newRef once they decide to use
// the slot, so that two callers observing the same slot each hold their
// own refcount rather than sharing one. Looking a slot up also removes it
// from the unpinned LRU (if it was there), so a page that's fetched again
// right after being released can't be evicted out from under the caller
// about to pin it.
func (c *Cache[T]) lookup(pageIndex uint32) (*slot[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots[pageIndex]
	if !ok {
		return nil, false
	}
	c.unpinned.Delete(pageIndex)
	return s, true
}

// releaseSlot is the pin's release callback: it marks pageIndex as an
// eviction candidate again rather than immediately freeing it, so a page
// that's released and re-fetched moments later doesn't need to be
// reloaded from storage.
func (c *Cache[T]) releaseSlot(pageIndex uint32) {
	c.mu.Lock()
	if _, ok := c.slots[pageIndex]; ok {
		c.unpinned.Insert(pageIndex, struct{}{})
	}
	c.mu.Unlock()
}

func (c *Cache[T]) makeRoom() bool {
	if c.capacity <= 0 || len(c.slots) < c.capacity {
		return true
	}
	key, _, evicted := c.unpinned.Evict()
	if !evicted {
		return false
	}
	delete(c.slots, key)
	c.metrics.Evictions.Inc()
	return true
}

// GetOrInsert returns a Ref pinning the page at pageIndex, loading it
// via init if it isn't already resident. init is called at most once per
// key even when multiple goroutines call GetOrInsert for the same
// pageIndex concurrently: the losers of the race block on the same
// singleflight call and share its result (the *slot, not a Ref). Each
// caller - winner and losers alike - then mints its own Ref over that
// slot below, so N concurrent callers hold N independent pin counts
// rather than sharing one; releasing one caller's Ref must not evict the
// page out from under another caller still holding theirs.
func (c *Cache[T]) GetOrInsert(pageIndex uint32, init func(*Page[T]) error) (*Ref[T, *Page[T]], error) {
	if s, ok := c.lookup(pageIndex); ok {
		c.metrics.Hits.Inc()
		return newRef[T, *Page[T]](s.pin, &s.page), nil
	}
	c.metrics.Misses.Inc()

	key := strconv.FormatUint(uint64(pageIndex), 10)
	v, err, _ := c.group.Do(key, func() (any, error) {
		if s, ok := c.lookup(pageIndex); ok {
			return s, nil
		}

		c.mu.Lock()
		if !c.makeRoom() {
			c.mu.Unlock()
			c.metrics.OutOfMemory.Inc()
			return nil, paged.ErrOutOfMemory
		}
		s := &slot[T]{}
		s.pin = newPin(func() { c.releaseSlot(pageIndex) })
		c.mu.Unlock()

		if err := init(&s.page); err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.slots[pageIndex] = s
		c.mu.Unlock()
		c.metrics.Inserts.Inc()

		return s, nil
	})
	if err != nil {
		return nil, err
	}
	s := v.(*slot[T])
	return newRef[T, *Page[T]](s.pin, &s.page), nil
}

// Len reports how many pages are currently resident, pinned or not.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.slots)
}
