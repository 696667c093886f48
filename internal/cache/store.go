package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long a fetched payload stays fresh when no TTL is configured.
const DefaultTTL = time.Hour

// Store is a shared key-value cache with per-entry expiry.
type Store interface {
	// Get returns the stored bytes and whether a live entry existed.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeletePrefix removes every entry whose key starts with prefix and reports how many were removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}
