// Package memory is the in-process SessionSecretStore used by -dev mode and
// tests, where no Redis is available. Secrets do not survive a restart.
package memory

import (
	"context"
	"sync"
	"time"
)

const sessionSecretTTL = 30 * 24 * time.Hour

type item struct {
	val string
	exp time.Time
}

type Client struct {
	mu      sync.RWMutex
	secrets map[string]item
}

func New() *Client {
	return &Client{secrets: make(map[string]item)}
}

func (c *Client) Close() error { return nil }

func (c *Client) SetSessionSecret(ctx context.Context, sessionID, secret string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.secrets[sessionID] = item{val: secret, exp: time.Now().Add(sessionSecretTTL)}
	return nil
}

func (c *Client) GetSessionSecret(ctx context.Context, sessionID string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.secrets[sessionID]
	if !ok || time.Now().After(v.exp) {
		return "", nil
	}
	return v.val, nil
}

func (c *Client) DeleteSessionSecret(ctx context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.secrets, sessionID)
	return nil
}
