// Package redis is a core.Cache backed by Redis, for deployments running
// more than one server process.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lborres/quora/core"
	goredis "github.com/redis/go-redis/v9"
)

const (
	DefaultPrefix = "quora:session:"
	DefaultTTL    = 5 * time.Minute
	scanBatch     = 100
)

type Cache struct {
	client goredis.UniversalClient
	prefix string
	ttl    time.Duration

	hits    atomic.Int64
	misses  atomic.Int64
	sets    atomic.Int64
	deletes atomic.Int64
}

var _ core.CacheWithStats = (*Cache)(nil)

// New wraps client. Entries expire after ttl (DefaultTTL when zero) and are
// stored under prefix (DefaultPrefix when empty).
func New(client goredis.UniversalClient, prefix string, ttl time.Duration) *Cache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, prefix: prefix, ttl: ttl}
}

// Dial connects to addr and pings it.
func Dial(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (c *Cache) key(tokenHash string) string {
	return c.prefix + tokenHash
}

func (c *Cache) Get(ctx context.Context, tokenHash string) (*core.SessionData, error) {
	raw, err := c.client.Get(ctx, c.key(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			c.misses.Add(1)
			return nil, core.ErrCacheNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("redis decode: %w", err)
	}
	c.hits.Add(1)
	return rec.sessionData(), nil
}

func (c *Cache) Set(ctx context.Context, tokenHash string, data *core.SessionData) error {
	raw, ttl, err := c.encode(data)
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	if err := c.client.Set(ctx, c.key(tokenHash), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	c.sets.Add(1)
	return nil
}

// Add writes with SET NX, so it never replaces an entry another process
// stored first.
func (c *Cache) Add(ctx context.Context, tokenHash string, data *core.SessionData) error {
	raw, ttl, err := c.encode(data)
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	stored, err := c.client.SetNX(ctx, c.key(tokenHash), raw, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	if stored {
		c.sets.Add(1)
	}
	return nil
}

func (c *Cache) encode(data *core.SessionData) ([]byte, time.Duration, error) {
	if data == nil || data.User == nil || data.Session == nil {
		return nil, 0, errors.New("incomplete session data")
	}

	raw, err := json.Marshal(newRecord(data))
	if err != nil {
		return nil, 0, fmt.Errorf("encode: %w", err)
	}

	// Never outlive the session itself.
	ttl := c.ttl
	if remaining := time.Until(data.Session.ExpiresAt); remaining > 0 && remaining < ttl {
		ttl = remaining
	}
	return raw, ttl, nil
}

func (c *Cache) Delete(ctx context.Context, tokenHash string) error {
	if err := c.client.Del(ctx, c.key(tokenHash)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	c.deletes.Add(1)
	return nil
}

// Clear removes every key under the cache prefix.
func (c *Cache) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", scanBatch).Result()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (c *Cache) Stats() core.CacheStats {
	return core.CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Sets:    c.sets.Load(),
		Deletes: c.deletes.Load(),
		TTL:     c.ttl,
	}
}
