package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/lborres/quora/adapters/memory"
	redisadapter "github.com/lborres/quora/adapters/redis"
	"github.com/lborres/quora/core"
	"github.com/lborres/quora/internal/config"
	"github.com/lborres/quora/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore_Memory(t *testing.T) {
	store, closeStore, err := openStore(context.Background(), memoryDSN)
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, store)
	assert.NoError(t, closeStore())
}

func TestPromoteAdmin(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.CreateUser(ctx, &core.User{UUID: "u-1", Username: "root", Email: "root@example.com", Role: core.RoleNonAdmin}))

	var buf bytes.Buffer
	log := logging.New(&buf, "json", "debug")

	require.NoError(t, promoteAdmin(ctx, store, "root", log))
	u, err := store.GetUserByUsername(ctx, "root")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	// Unknown users are skipped, not fatal
	require.NoError(t, promoteAdmin(ctx, store, "ghost", log))
	assert.Contains(t, buf.String(), "admin user not found")

	// Nothing configured
	require.NoError(t, promoteAdmin(ctx, store, "", log))
}

func TestOpenCache(t *testing.T) {
	ctx := context.Background()

	t.Run("in-memory by default", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.LoadDefaults()

		cache, closeCache, err := openCache(ctx, cfg, logging.Nop{})
		require.NoError(t, err)
		defer closeCache()
		assert.IsType(t, &core.InMemoryCache{}, cache)
	})

	t.Run("redis when reachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := &config.Config{}
		cfg.LoadDefaults()
		cfg.RedisAddr = mr.Addr()

		cache, closeCache, err := openCache(ctx, cfg, logging.Nop{})
		require.NoError(t, err)
		defer closeCache()
		assert.IsType(t, &redisadapter.Cache{}, cache)
	})

	t.Run("fails when configured redis is down", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		cfg := &config.Config{}
		cfg.LoadDefaults()
		cfg.RedisAddr = addr

		cache, _, err := openCache(ctx, cfg, logging.Nop{})
		assert.Error(t, err)
		assert.Nil(t, cache)
	})
}

func TestOpenEvents_DisabledWithoutURL(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()

	events, closeEvents := openEvents(context.Background(), cfg, logging.Nop{})
	defer closeEvents()
	assert.Nil(t, events)
}
