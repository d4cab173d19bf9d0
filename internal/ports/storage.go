package ports

import "context"

// TagStorage is the durable key -> list-of-strings medium behind the tag store.
// A single Write is a full replace and is the unit of persistence.
// Implementations perform no caching: every call reaches the medium.
type TagStorage interface {
	// Read returns the stored list for key. ok is false when key is absent.
	Read(ctx context.Context, key string) (tags []string, ok bool, err error)

	// Write replaces the list stored under key
	Write(ctx context.Context, key string, tags []string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns every stored key
	Keys(ctx context.Context) ([]string, error)

	// Close releases the medium
	Close() error
}

// TagMover is implemented by storages that can move a list from one key to
// another in a single atomic step.
type TagMover interface {
	Move(ctx context.Context, oldKey, newKey string, tags []string) error
}

// ExistsFunc is a liveness probe for a file identity.
// An error means the probe could not decide.
type ExistsFunc func(ctx context.Context, id string) (bool, error)
