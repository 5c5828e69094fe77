package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a string store keyed by entity identifier. Get reports a miss
// with ok == false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	GenerateKey(entity, id string) string
}

func generateKey(prefix, entity, id string) string {
	return fmt.Sprintf("%s:%s:%s", prefix, entity, id)
}
