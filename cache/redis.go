package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 256

// Redis is a [Cache] over a Redis keyspace. Values are JSON-encoded under
// prefix+token. RemoveWhere SCANs the prefix first to fix the key snapshot,
// then inspects and deletes, so keys written during the scan survive it.
type Redis[V any] struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis creates a Redis-backed cache. prefix namespaces the keys and must
// be unique per cache instance.
func NewRedis[V any](client redis.UniversalClient, prefix string) *Redis[V] {
	return &Redis[V]{client: client, prefix: prefix}
}

// Put inserts or overwrites the entry for token.
func (r *Redis[V]) Put(ctx context.Context, token string, value V) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode entry: %w", err)
	}
	if err := r.client.Set(ctx, r.prefix+token, data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Get returns the entry for token.
func (r *Redis[V]) Get(ctx context.Context, token string) (V, bool, error) {
	var value V

	data, err := r.client.Get(ctx, r.prefix+token).Bytes()
	if err == redis.Nil {
		return value, false, nil
	}
	if err != nil {
		return value, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, false, fmt.Errorf("cache: decode entry: %w", err)
	}
	return value, true, nil
}

// Remove deletes the entry for token.
func (r *Redis[V]) Remove(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, r.prefix+token).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// RemoveWhere deletes every entry matching pred and returns the removed
// tokens. Entries deleted by a concurrent caller between scan and inspect
// are simply skipped.
func (r *Redis[V]) RemoveWhere(ctx context.Context, pred func(V) bool) ([]string, error) {
	keys, err := r.scanKeys(ctx)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, key := range keys {
		data, err := r.client.Get(ctx, key).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		var value V
		if err := json.Unmarshal(data, &value); err != nil {
			continue
		}
		if !pred(value) {
			continue
		}
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return removed, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		removed = append(removed, strings.TrimPrefix(key, r.prefix))
	}
	return removed, nil
}

// Clear removes all entries under the prefix.
func (r *Redis[V]) Clear(ctx context.Context) error {
	keys, err := r.scanKeys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Len returns the number of live entries under the prefix.
func (r *Redis[V]) Len(ctx context.Context) (int, error) {
	keys, err := r.scanKeys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (r *Redis[V]) scanKeys(ctx context.Context) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", scanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		keys = append(keys, batch...)
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}
