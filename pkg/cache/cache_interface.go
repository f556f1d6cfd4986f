package cache

import (
	"context"
	"time"
)

// Cache is the key/value contract used for availability snapshots, admin
// sessions and login throttling. Values are JSON encoded.
type Cache interface {
	// Get decodes the value of key into dest.
	// found = false on a miss; dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value with ttl (0 = no expiry).
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error

	Ping(ctx context.Context) error

	DeletePattern(ctx context.Context, pattern string) error

	// Counters
	Increment(ctx context.Context, key string) (int64, error)
	Exists(ctx context.Context, key string) (bool, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}
