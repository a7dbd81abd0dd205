package repository

import (
	"context"
	"errors"
	"time"
)

var (
	ErrKeyNotFound = errors.New("key not found")
	ErrInvalidTTL  = errors.New("ttl must be positive")
)

// StateStore abstracts short-lived key-value state. Every entry carries a TTL.
// Implementations: Redis (networked), in-memory (fallback), and the selector over both.
type StateStore interface {
	// Set overwrites key; the entry becomes unreadable once ttl has elapsed.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get returns ErrKeyNotFound for absent or expired keys.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete is idempotent.
	Delete(ctx context.Context, key string) error
	// CompareAndDelete removes key only while it still holds expected.
	// It reports whether this call performed the delete.
	CompareAndDelete(ctx context.Context, key string, expected []byte) (bool, error)
}
