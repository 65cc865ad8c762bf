// Package cache provides expiring key/value stores shared by the price endpoints.
package cache

import (
	"context"
	"time"
)

// Cache stores JSON-encodable values under string keys.
// A ttl of 0 keeps the value until it is deleted.
type Cache interface {
	// Get decodes the value stored at key into dst. It reports false on a miss.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
