package catalog

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	cache := NewCache(client, time.Minute)
	ctx := context.Background()

	payload := cachedList{Items: []ProductListItem{{ID: "p1", Title: "Cinta canela"}}, Total: 1}
	require.NoError(t, cache.SetJSON(ctx, "k", payload))

	var got cachedList
	ok, err := cache.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, payload, got)
}

func TestCacheMissingKey(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	cache := NewCache(client, time.Minute)

	var got cachedList
	ok, err := cache.GetJSON(context.Background(), "missing", &got)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCacheEntryExpires(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	cache := NewCache(client, time.Second)
	ctx := context.Background()
	require.NoError(t, cache.SetJSON(ctx, "k", cachedList{Total: 3}))

	mr.FastForward(2 * time.Second)

	var got cachedList
	ok, err := cache.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCacheNilClientIsNoop(t *testing.T) {
	cache := NewCache(nil, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.SetJSON(ctx, "k", cachedList{}))
	ok, err := cache.GetJSON(ctx, "k", &cachedList{})
	require.NoError(t, err)
	require.False(t, ok)
}
