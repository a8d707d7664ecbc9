package sst

import (
	"container/list"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// CacheKey identifies one cached page: a byte range within a named
// file, tagged as index or data since the two get independently
// sized caches.
type CacheKey struct {
	Path    string
	Offset  int64
	Length  int32
	IsIndex bool
}

// Cache stores loaded pages keyed by CacheKey. Get must call load at
// most once per miss; single-flight coalescing across concurrent
// callers is layered on top by BlockCache, not required of Cache
// implementations themselves.
type Cache interface {
	Get(key CacheKey, load func() (*Bytes, error)) (*Bytes, error)
	Put(key CacheKey, val *Bytes)
	Invalidate(key CacheKey)
	InvalidateAll()
	AsMap() map[CacheKey]*Bytes
}

// NoCache never retains anything; every Get calls load. This is the
// default cache for both index and data pages.
type NoCache struct{}

// NewNoCache returns a pass-through Cache.
func NewNoCache() *NoCache { return &NoCache{} }

func (*NoCache) Get(_ CacheKey, load func() (*Bytes, error)) (*Bytes, error) { return load() }
func (*NoCache) Put(CacheKey, *Bytes)                                        {}
func (*NoCache) Invalidate(CacheKey)                                         {}
func (*NoCache) InvalidateAll()                                              {}
func (*NoCache) AsMap() map[CacheKey]*Bytes                                  { return map[CacheKey]*Bytes{} }

type lruEntry struct {
	key CacheKey
	val *Bytes
}

// LRUCache is a fixed-capacity, least-recently-used page cache.
type LRUCache struct {
	mu       sync.Mutex
	capacity int
	items    map[CacheKey]*list.Element
	order    *list.List
	hits     int64
	misses   int64
	logger   *slog.Logger
}

// NewLRUCache creates a cache holding up to capacity pages.
func NewLRUCache(capacity int, logger *slog.Logger) *LRUCache {
	if capacity < 1 {
		capacity = 1
	}
	if logger == nil {
		logger = discardLogger()
	}
	return &LRUCache{
		capacity: capacity,
		items:    make(map[CacheKey]*list.Element),
		order:    list.New(),
		logger:   logger,
	}
}

// Get returns the cached page for key, loading and caching it on miss.
func (c *LRUCache) Get(key CacheKey, load func() (*Bytes, error)) (*Bytes, error) {
	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		c.hits++
		v := el.Value.(*lruEntry).val
		c.mu.Unlock()
		return v, nil
	}
	c.misses++
	c.mu.Unlock()

	v, err := load()
	if err != nil {
		return nil, err
	}
	c.Put(key, v)
	return v, nil
}

// Put inserts or refreshes val under key, evicting the least recently
// used page if the cache is now over capacity.
func (c *LRUCache) Put(key CacheKey, val *Bytes) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		el.Value.(*lruEntry).val = val
		return
	}
	el := c.order.PushFront(&lruEntry{key: key, val: val})
	c.items[key] = el
	if c.order.Len() > c.capacity {
		back := c.order.Back()
		if back != nil {
			c.order.Remove(back)
			evicted := back.Value.(*lruEntry)
			delete(c.items, evicted.key)
			c.logger.Debug("evicted block cache page",
				"path", evicted.key.Path, "offset", evicted.key.Offset, "isIndex", evicted.key.IsIndex)
		}
	}
}

// Invalidate drops key from the cache, if present.
func (c *LRUCache) Invalidate(key CacheKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.order.Remove(el)
		delete(c.items, key)
	}
}

// InvalidateAll drops every entry.
func (c *LRUCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[CacheKey]*list.Element)
	c.order.Init()
}

// AsMap returns a snapshot of the cache's current contents.
func (c *LRUCache) AsMap() map[CacheKey]*Bytes {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[CacheKey]*Bytes, len(c.items))
	for k, el := range c.items {
		out[k] = el.Value.(*lruEntry).val
	}
	return out
}

// Stats returns the cache's cumulative hit/miss counts.
func (c *LRUCache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// CacheManager holds the two caches a table needs: one for index
// pages, one for data pages, sized and evicted independently.
type CacheManager struct {
	Index Cache
	Data  Cache
}

// NewCacheManager pairs an index cache with a data cache.
func NewCacheManager(index, data Cache) *CacheManager {
	return &CacheManager{Index: index, Data: data}
}

func (m *CacheManager) cacheFor(isIndex bool) Cache {
	if isIndex {
		return m.Index
	}
	return m.Data
}

// BlockCache is the per-file front door to a CacheManager: it reads
// pages from an InputStream on miss and deduplicates concurrent loads
// of the same page via singleflight, regardless of which underlying
// Cache implementation is in play.
type BlockCache struct {
	path   string
	stream InputStream
	pool   MemoryPool
	mgr    *CacheManager
	sf     singleflight.Group
}

// NewBlockCache creates a BlockCache reading path's pages from stream.
func NewBlockCache(path string, stream InputStream, pool MemoryPool, mgr *CacheManager) *BlockCache {
	return &BlockCache{path: path, stream: stream, pool: pool, mgr: mgr}
}

// GetBlock returns the size bytes at offset, tagged isIndex, loading
// and caching them on miss. Concurrent callers for the same region
// share a single underlying read.
func (bc *BlockCache) GetBlock(offset int64, size int32, isIndex bool) (*Bytes, error) {
	key := CacheKey{Path: bc.path, Offset: offset, Length: size, IsIndex: isIndex}
	sfKey := fmt.Sprintf("%s:%d:%d:%t", key.Path, key.Offset, key.Length, key.IsIndex)

	v, err, _ := bc.sf.Do(sfKey, func() (interface{}, error) {
		cache := bc.mgr.cacheFor(isIndex)
		return cache.Get(key, func() (*Bytes, error) {
			buf := bc.pool.Allocate(int(size))
			if err := bc.stream.ReadAt(buf.Data(), offset); err != nil {
				return nil, err
			}
			return buf, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return v.(*Bytes), nil
}

// Close closes the underlying stream.
func (bc *BlockCache) Close() error { return bc.stream.Close() }
