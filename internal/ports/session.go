package ports

import (
	"context"
	"time"
)

// SessionStore is the session-scoped key-value store of the identity
// service's session. Expiry is owned by the session, passed as ttl.
type SessionStore interface {
	Set(ctx context.Context, sessionID, key string, value []byte, ttl time.Duration) error
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, sessionID, key string) ([]byte, error)
	// Pop atomically reads and deletes the key; (nil, nil) when absent.
	Pop(ctx context.Context, sessionID, key string) ([]byte, error)
}
