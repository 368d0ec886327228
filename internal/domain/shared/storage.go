package shared

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by KeyValueStore.Get when nothing is stored under the key
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is the durable local storage the stores persist to.
// Values are opaque text (JSON); writes are last-write-wins per key.
type KeyValueStore interface {
	// Get returns the value stored under key, or ErrKeyNotFound
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
