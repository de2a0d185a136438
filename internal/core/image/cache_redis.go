// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/yomira-image/internal/platform/constants"
)

// ListingCache caches the results of the types and tags listings.
//
// Get resolves key against the current generation and returns that resolved
// slot. Set writes to the slot, so a listing computed before an Invalidate is
// stored under a generation nobody reads any more.
type ListingCache interface {
	// Get decodes a cached value into target and reports whether it was found.
	Get(context context.Context, key string, target any) (slot string, found bool, err error)
	Set(context context.Context, slot string, value any) error

	// Invalidate drops every cached listing.
	Invalidate(context context.Context) error
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, string, any) (string, bool, error) { return "", false, nil }
func (NopCache) Set(context.Context, string, any) error                 { return nil }
func (NopCache) Invalidate(context.Context) error                       { return nil }

var errNoListingSlot = errors.New("redis_listing_set_failed: empty slot")

// RedisListingCache implements [ListingCache] using Redis.
//
// Keys embed a generation number stored under [constants.RedisKeyListingEpoch].
// Invalidate increments it, so older entries are never read again and expire by TTL.
type RedisListingCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisListingCache creates a new Redis-backed [ListingCache].
func NewRedisListingCache(client redis.UniversalClient, ttl time.Duration) *RedisListingCache {
	return &RedisListingCache{client: client, ttl: ttl}
}

/*
Get reads a cached listing.

Parameters:
  - context: context.Context
  - key: Listing key without the generation
  - target: Pointer the JSON value is decoded into

Returns:
  - string: The generation-qualified key to pass to Set
  - bool: Whether the entry existed
  - error: Connectivity or decoding errors
*/
func (cache *RedisListingCache) Get(context context.Context, key string, target any) (string, bool, error) {
	fullKey, err := cache.key(context, key)
	if err != nil {
		return "", false, err
	}

	payload, err := cache.client.Get(context, fullKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return fullKey, false, nil
		}
		return "", false, fmt.Errorf("redis_listing_get_failed: %w", err)
	}

	if err := json.Unmarshal(payload, target); err != nil {
		return fullKey, false, fmt.Errorf("redis_listing_decode_failed: %w", err)
	}
	return fullKey, true, nil
}

/*
Set stores a listing in the slot returned by Get with the configured TTL.

Parameters:
  - context: context.Context
  - slot: Generation-qualified key returned by Get
  - value: JSON-encodable listing
*/
func (cache *RedisListingCache) Set(context context.Context, slot string, value any) error {
	if slot == "" {
		return errNoListingSlot
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis_listing_encode_failed: %w", err)
	}

	if err := cache.client.Set(context, slot, payload, cache.ttl).Err(); err != nil {
		return fmt.Errorf("redis_listing_set_failed: %w", err)
	}
	return nil
}

// Invalidate starts a new generation.
func (cache *RedisListingCache) Invalidate(context context.Context) error {
	if err := cache.client.Incr(context, constants.RedisKeyListingEpoch).Err(); err != nil {
		return fmt.Errorf("redis_listing_invalidate_failed: %w", err)
	}
	return nil
}

func (cache *RedisListingCache) key(context context.Context, key string) (string, error) {
	epoch, err := cache.client.Get(context, constants.RedisKeyListingEpoch).Result()
	if errors.Is(err, redis.Nil) {
		epoch = "0"
	} else if err != nil {
		return "", fmt.Errorf("redis_listing_epoch_failed: %w", err)
	}
	return listingKey(epoch, key), nil
}

func listingKey(epoch, key string) string {
	return constants.RedisPrefixListing + epoch + ":" + key
}
