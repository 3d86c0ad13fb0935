package repository

import (
	"context"
	"encoding/json"
)

// KVStore persists JSON documents by key. Get returns an error matching
// apperrors.ErrNotFound when the key is absent or expired.
type KVStore interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)

	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key string, value json.RawMessage) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error
}

// Purger is implemented by stores that need expired entries removed by a
// background job rather than expiring them natively.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}
