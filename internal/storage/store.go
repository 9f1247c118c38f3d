package storage

import (
	"context"
	"errors"
)

// Common errors returned by the stores
var (
	ErrNotFound      = errors.New("key not found")
	ErrInvalidKey    = errors.New("invalid storage key")
	ErrUnavailable   = errors.New("storage backend unavailable")
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// Store is the local key-value storage the catalog and the session are persisted in.
// Every value is overwritten wholesale.
type Store interface {
	// Get returns the value stored under key or ErrNotFound
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key, value string) error

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources
	Close() error
}
