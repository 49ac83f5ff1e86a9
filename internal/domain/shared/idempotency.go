package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers request identifiers so a resubmitted payment or
// deposit cannot be applied twice.
type IdempotencyStore interface {
	// MarkProcessed records a request key with a TTL.
	// Returns true if the key was newly recorded, false if it was already present.
	MarkProcessed(ctx context.Context, requestKey string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether a request key has already been recorded
	IsProcessed(ctx context.Context, requestKey string) (bool, error)

	// Release forgets a request key so the same submission can be retried.
	// Called when the operation the key reserved was rolled back.
	Release(ctx context.Context, requestKey string) error

	// Close releases the store's resources
	Close() error
}

// IdempotencyConfig holds configuration for duplicate-request handling
type IdempotencyConfig struct {
	// TTL is how long a processed request key is remembered.
	// After this duration the same key is accepted again.
	TTL time.Duration

	// Enabled toggles duplicate-request checking
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
