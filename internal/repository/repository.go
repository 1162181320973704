// Package repository defines the persistence contracts the services depend
// on. Implementations live in the postgres and memory subpackages.
package repository

import "context"

// KVStore is JSON document storage keyed by name. Values round-trip
// through circular-safe JSON encoding; dates persist as ISO-8601 strings.
type KVStore interface {
	// Get returns the stored document, or (nil, nil) when the key is
	// absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores value under key, replacing any previous document.
	Put(ctx context.Context, key string, value any) error
	// Delete removes the key; deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
}
