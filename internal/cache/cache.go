// Package cache stores serialized aggregator pages for the feed session.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Cache is a byte store with per-entry expiry. A ttl of zero selects the
// backend default.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// GetJSON loads key and decodes it into a T. A miss or a value that no
// longer decodes reports false.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, bool) {
	var value T
	data, ok := c.Get(ctx, key)
	if !ok {
		return value, false
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, false
	}
	return value, true
}

func SetJSON(ctx context.Context, c Cache, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}
