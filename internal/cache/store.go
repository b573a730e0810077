// Package cache is the local durable mirror of session, basket and catalog
// state. It never originates data: stores write it on every mutation and read
// it back only at hydration time or as an offline fallback.
package cache

import "context"

// Store is a key-value mirror with JSON values. A malformed or unreadable
// stored value is reported as a miss, never as an error: cache corruption
// must degrade to "no cached data", not break hydration.
type Store interface {
	// Get unmarshals the value at key into dest. Returns false on miss.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	// GetString returns the raw string value at key. Returns false on miss.
	GetString(ctx context.Context, key string) (string, bool, error)
	// Set marshals value to JSON and stores it at key.
	Set(ctx context.Context, key string, value interface{}) error
	// SetString stores a raw string value at key.
	SetString(ctx context.Context, key, value string) error
	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}
