package core

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Ensure InMemoryCache implements CacheWithStats
var _ CacheWithStats = (*InMemoryCache)(nil)

// InMemoryCache is a process-local session cache. It is only coherent for a
// single instance; multi-instance deployments should use the redis adapter.
type InMemoryCache struct {
	cache   map[string]*cachedRecord // key: token hash
	mu      sync.RWMutex
	ttl     time.Duration
	maxSize int

	// counters
	hits      int64
	misses    int64
	sets      int64
	deletes   int64
	evictions int64
}

type cachedRecord struct {
	data     *SessionData
	cachedAt time.Time
}

func NewInMemoryCache(c CacheConfig) *InMemoryCache {
	if c.TTL == 0 {
		c.TTL = 5 * time.Minute
	}
	if c.MaxSize == 0 {
		c.MaxSize = 500
	}

	return &InMemoryCache{
		cache:   make(map[string]*cachedRecord),
		ttl:     c.TTL,
		maxSize: c.MaxSize,
	}
}

func (c *InMemoryCache) Get(ctx context.Context, tokenHash string) (*SessionData, error) {
	c.mu.RLock()
	record, exists := c.cache[tokenHash]
	c.mu.RUnlock()

	if !exists {
		atomic.AddInt64(&c.misses, 1)
		return nil, ErrCacheNotFound
	}

	if time.Since(record.cachedAt) > c.ttl {
		// expired
		atomic.AddInt64(&c.misses, 1)
		if err := c.Delete(ctx, tokenHash); err != nil {
			return nil, err
		}
		return nil, ErrCacheNotFound
	}

	atomic.AddInt64(&c.hits, 1)
	return record.data, nil
}

func (c *InMemoryCache) Set(ctx context.Context, tokenHash string, data *SessionData) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(tokenHash, data)
	return nil
}

func (c *InMemoryCache) Add(ctx context.Context, tokenHash string, data *SessionData) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if record, exists := c.cache[tokenHash]; exists && time.Since(record.cachedAt) <= c.ttl {
		return nil
	}
	c.put(tokenHash, data)
	return nil
}

// put requires c.mu held for writing.
func (c *InMemoryCache) put(tokenHash string, data *SessionData) {
	// Simple eviction if full
	if _, exists := c.cache[tokenHash]; !exists && len(c.cache) >= c.maxSize {
		for k := range c.cache {
			delete(c.cache, k)
			atomic.AddInt64(&c.evictions, 1)
			break
		}
	}

	c.cache[tokenHash] = &cachedRecord{
		data:     data,
		cachedAt: time.Now(),
	}

	atomic.AddInt64(&c.sets, 1)
}

func (c *InMemoryCache) Delete(ctx context.Context, tokenHash string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, existed := c.cache[tokenHash]; existed {
		delete(c.cache, tokenHash)
		atomic.AddInt64(&c.deletes, 1)
	}
	return nil
}

func (c *InMemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*cachedRecord)
	return nil
}

func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func (c *InMemoryCache) Stats() CacheStats {
	return CacheStats{
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Sets:      atomic.LoadInt64(&c.sets),
		Deletes:   atomic.LoadInt64(&c.deletes),
		Evictions: atomic.LoadInt64(&c.evictions),
		Size:      c.Len(),
		TTL:       c.ttl,
	}
}
