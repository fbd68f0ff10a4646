package cache

import (
	"context"
	"time"
)

// Cache stores short-lived string values such as rendered statistics.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
