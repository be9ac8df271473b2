package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/taskpanel/taskpanel/internal/core/ports"
)

const keyPrefix = "taskpanel:"

// KeyValueStore keeps the local collections in Redis string keys.
// Keys: taskpanel:<name>
type KeyValueStore struct {
	client *redis.Client
}

var _ ports.KeyValueStore = (*KeyValueStore)(nil)

// NewKeyValueStore creates a KeyValueStore wrapping the given Redis client.
func NewKeyValueStore(client *redis.Client) *KeyValueStore {
	return &KeyValueStore{client: client}
}

// Get returns the raw value under key. A missing key is not an error.
func (s *KeyValueStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, true, nil
}

// Set stores value under key without expiry.
func (s *KeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, keyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Ping reports whether Redis answers.
func (s *KeyValueStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (s *KeyValueStore) Close() error {
	return s.client.Close()
}
