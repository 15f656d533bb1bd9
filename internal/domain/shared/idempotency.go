package shared

import (
	"context"
	"time"
)

// IdempotencyStore records submission keys so a repeated request can be
// rejected before it opens a transaction.
type IdempotencyStore interface {
	// MarkProcessed records key with a TTL.
	// Returns true if the key was newly recorded, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Forget removes a key so the same submission may be retried
	Forget(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}
