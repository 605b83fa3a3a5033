package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis key prefix for idempotency entries.
const entryKeyPrefix = "idem:key:"

// RedisStore is a Redis-backed Store for deployments where multiple instances
// must share idempotency state. Entries are stored as JSON with SETNX so the
// first writer wins.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Redis-backed idempotency store. The client
// lifecycle is managed by the caller.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns the entry for key, (nil, nil) on a miss.
func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	raw, err := s.client.Get(ctx, entryKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get idempotency entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decode idempotency entry: %w", err)
	}
	return &entry, nil
}

// Put stores entry under key if absent. SETNX keeps writes first-wins across
// instances. Entries carry no TTL, matching the in-memory store's
// no-eviction model.
func (s *RedisStore) Put(ctx context.Context, key string, entry Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode idempotency entry: %w", err)
	}
	if err := s.client.SetNX(ctx, entryKeyPrefix+key, raw, 0).Err(); err != nil {
		return fmt.Errorf("put idempotency entry: %w", err)
	}
	return nil
}
