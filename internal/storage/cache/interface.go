// internal/storage/cache/interface.go
package cache

import "context"

// Storage defines the interface for price cache backends
type Storage interface {
	// Write stores data at the given key
	Write(ctx context.Context, key string, data []byte) error

	// Read retrieves data for the given key
	Read(ctx context.Context, key string) ([]byte, error)

	// List returns all keys matching the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the data at the given key
	Delete(ctx context.Context, key string) error

	// Exists checks if data exists at the given key
	Exists(ctx context.Context, key string) (bool, error)
}
