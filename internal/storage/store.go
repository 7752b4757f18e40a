package storage

import "context"

// SessionSecretStore holds the per-session signing secrets consulted by the
// auth middleware. Implementations: redis.Client, memory.Client (for -dev and
// tests).
type SessionSecretStore interface {
	SetSessionSecret(ctx context.Context, sessionID, secret string) error
	GetSessionSecret(ctx context.Context, sessionID string) (string, error)
	DeleteSessionSecret(ctx context.Context, sessionID string) error
	Close() error
}
