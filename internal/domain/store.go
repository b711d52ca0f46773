package domain

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by KeyValueStore.Get for a missing or expired key
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is the flat storage the app persists into, one JSON value per key.
// A zero ttl means the key never expires. Backend failures match ErrStorageUnavailable.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetNX stores value only when key is absent and reports whether it did
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}
