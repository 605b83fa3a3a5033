// Package idempotency caches the outcome of processed requests keyed by the
// client-supplied idempotency key. Entries are write-once: the first stored
// outcome is returned verbatim for every later request bearing the same key,
// regardless of the request body. Entries are never evicted.
package idempotency

import (
	"context"
	"encoding/json"
)

// Entry is the cached result for one idempotency key. Body holds the exact
// JSON response payload so replays are byte-identical.
type Entry struct {
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body"`
}

// Store is the idempotency cache contract. Get returns (nil, nil) on a miss.
// Put must be write-once: a second Put for an existing key is a no-op.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Put(ctx context.Context, key string, entry Entry) error
}
