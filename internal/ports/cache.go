package ports

import (
	"context"
	"time"
)

// DocumentCache caches rendered discovery documents per shop.
type DocumentCache interface {
	// Get returns (nil, nil) on a cache miss.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
