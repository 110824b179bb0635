package domain

import (
	"context"
	"time"
)

// CacheError represents an error originating from the cache.
type CacheError string

func (e CacheError) Error() string {
	return string(e)
}

// ErrCacheMiss is returned when a key is not found in the cache.
const ErrCacheMiss = CacheError("cache: key not found")

// Cache is the port for caching operations. The Redis adapter implements
// it; services depend on this interface so tests can swap in fakes.
type Cache interface {
	// Get retrieves an item. Returns ErrCacheMiss when the key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores an item, overwriting any existing value. A zero
	// expiration keeps the item until evicted.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error

	// Delete removes an item. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping checks the health of the cache backend.
	Ping(ctx context.Context) error

	// HGetAll retrieves all fields and values of the hash stored at key.
	// An absent key yields an empty map.
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// HSet sets one field in the hash stored at key.
	HSet(ctx context.Context, key string, field string, value string) error

	// Expire sets an expiration on key.
	Expire(ctx context.Context, key string, expiration time.Duration) error
}
