package cache

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the backing store cannot be reached.
// The in-memory implementation never returns it.
var ErrUnavailable = errors.New("cache: backend unavailable")

// Cache is the shared contract of the session and permission caches:
// an unbounded token-keyed map with explicit removal semantics.
type Cache[V any] interface {
	// Put inserts or overwrites the entry for token.
	Put(ctx context.Context, token string, value V) error
	// Get returns the entry for token, with ok=false when absent.
	Get(ctx context.Context, token string) (V, bool, error)
	// Remove deletes the entry for token. Removing an absent token is a
	// no-op.
	Remove(ctx context.Context, token string) error
	// RemoveWhere deletes every entry whose value matches pred and returns
	// the removed tokens. The scan covers a snapshot of the keys present at
	// scan start; entries added afterwards are unaffected.
	RemoveWhere(ctx context.Context, pred func(V) bool) ([]string, error)
	// Clear removes all entries.
	Clear(ctx context.Context) error
	// Len returns the number of live entries.
	Len(ctx context.Context) (int, error)
}
