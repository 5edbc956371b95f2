package store

import (
	"context"
	"errors"
)

// ErrUnavailable wraps transport failures from the remote store. Callers
// check it with errors.Is; operations interrupted by it are safe to retry
// because every primitive below is idempotent.
var ErrUnavailable = errors.New("store unavailable")

// Store is the key-value store adapter used by the registry. It deliberately
// exposes only idempotent, re-orderable primitives: set add/remove rather
// than "set exact value", so compensating rollbacks stay correct when calls
// interleave. There are no cross-key transactions.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a string value under key.
	Set(ctx context.Context, key, value string) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// SetAdd adds members to the set stored at key.
	SetAdd(ctx context.Context, key string, members ...string) error

	// SetRemove removes members from the set stored at key.
	SetRemove(ctx context.Context, key string, members ...string) error

	// SetMembers returns all members of the set stored at key.
	SetMembers(ctx context.Context, key string) ([]string, error)

	// DeleteMany removes keys in bulk, best effort.
	DeleteMany(ctx context.Context, keys ...string) error
}
