package storage

import (
	"context"

	"github.com/artcase/storefront/internal/domain/shared"
)

// KeyPrefix is the root of every namespaced key
const KeyPrefix = "artcase"

// Namespaced scopes a shared store to one browser profile by prefixing keys
// with "artcase:<profileID>:".
type Namespaced struct {
	inner  shared.KeyValueStore
	prefix string
}

// NewNamespaced wraps inner for profileID
func NewNamespaced(inner shared.KeyValueStore, profileID string) *Namespaced {
	return &Namespaced{inner: inner, prefix: NamespacedKey(profileID, "")}
}

// NamespacedKey returns the full storage key of key for profileID
func NamespacedKey(profileID, key string) string {
	return KeyPrefix + ":" + profileID + ":" + key
}

func (n *Namespaced) Get(ctx context.Context, key string) (string, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *Namespaced) Set(ctx context.Context, key, value string) error {
	return n.inner.Set(ctx, n.prefix+key, value)
}

func (n *Namespaced) Remove(ctx context.Context, key string) error {
	return n.inner.Remove(ctx, n.prefix+key)
}

var _ shared.KeyValueStore = (*Namespaced)(nil)
