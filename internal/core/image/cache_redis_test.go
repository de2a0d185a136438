// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingKey(t *testing.T) {
	assert.Equal(t, "image:listing:0:types:abc", listingKey("0", "types:abc"))
	assert.Equal(t, "image:listing:12:tags:abc", listingKey("12", "tags:abc"))
}

/*
TestRedisListingCache_Unreachable verifies that connectivity failures surface
as errors so the service can fall back to the repository.
*/
func TestRedisListingCache_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	cache := NewRedisListingCache(client, time.Minute)
	ctx := context.Background()

	var types []string
	slot, found, err := cache.Get(ctx, "types:x", &types)
	require.Error(t, err)
	assert.False(t, found)
	assert.Empty(t, slot)

	assert.Error(t, cache.Set(ctx, "image:listing:0:types:x", []string{"bg"}))
	assert.Error(t, cache.Set(ctx, "", []string{"bg"}))
	assert.Error(t, cache.Invalidate(ctx))
}

func TestNopCache(t *testing.T) {
	ctx := context.Background()
	var cache ListingCache = NopCache{}

	require.NoError(t, cache.Set(ctx, "k", "v"))

	var value string
	_, found, err := cache.Get(ctx, "k", &value)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Invalidate(ctx))
}

// stringStore is a minimal in-process [redis.UniversalClient] for the
// commands the listing cache issues.
type stringStore struct {
	redis.UniversalClient
	values map[string]string
}

func newStringStore() *stringStore {
	return &stringStore{values: map[string]string{}}
}

func (store *stringStore) Get(_ context.Context, key string) *redis.StringCmd {
	value, ok := store.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (store *stringStore) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	switch typed := value.(type) {
	case []byte:
		store.values[key] = string(typed)
	case string:
		store.values[key] = typed
	}
	return redis.NewStatusResult("OK", nil)
}

func (store *stringStore) Incr(_ context.Context, key string) *redis.IntCmd {
	current, _ := strconv.ParseInt(store.values[key], 10, 64)
	current++
	store.values[key] = strconv.FormatInt(current, 10)
	return redis.NewIntResult(current, nil)
}

/*
TestRedisListingCache_Generations verifies hits within a generation and that a
listing computed before Invalidate is written to the retired generation.
*/
func TestRedisListingCache_Generations(t *testing.T) {
	ctx := context.Background()
	store := newStringStore()
	cache := NewRedisListingCache(store, time.Minute)

	t.Run("hit_after_set", func(t *testing.T) {
		var types []string
		slot, found, err := cache.Get(ctx, "types:a", &types)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, "image:listing:0:types:a", slot)

		require.NoError(t, cache.Set(ctx, slot, []string{"bg"}))

		slot, found, err = cache.Get(ctx, "types:a", &types)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []string{"bg"}, types)
		assert.Equal(t, "image:listing:0:types:a", slot)
	})

	t.Run("invalidate_between_get_and_set", func(t *testing.T) {
		var tags []string
		slot, found, err := cache.Get(ctx, "tags:b", &tags)
		require.NoError(t, err)
		require.False(t, found)

		require.NoError(t, cache.Invalidate(ctx))
		require.NoError(t, cache.Set(ctx, slot, []string{"stale"}))

		tags = nil
		fresh, found, err := cache.Get(ctx, "tags:b", &tags)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, tags)
		assert.Equal(t, "image:listing:1:tags:b", fresh)
		assert.NotEqual(t, slot, fresh)
	})

	t.Run("previous_generation_unreachable", func(t *testing.T) {
		var types []string
		_, found, err := cache.Get(ctx, "types:a", &types)
		require.NoError(t, err)
		assert.False(t, found)
	})
}
