package memory

import (
	"sync"

	"github.com/gmacarthur/innersync-desktop/internal/core/ports/driven"
)

// Ensure TokenCache implements the interface.
var _ driven.TokenCache = (*TokenCache)(nil)

// TokenCache is an in-memory implementation of driven.TokenCache.
type TokenCache struct {
	mu    sync.RWMutex
	token string
}

// NewTokenCache creates a token cache holding token.
func NewTokenCache(token string) *TokenCache {
	return &TokenCache{token: token}
}

// Load returns the cached token, or "" if none.
func (c *TokenCache) Load() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Save replaces the cached token.
func (c *TokenCache) Save(token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	return nil
}

// Clear removes the cached token.
func (c *TokenCache) Clear() error {
	return c.Save("")
}

// Path returns the cache location.
func (c *TokenCache) Path() string {
	return ":memory:"
}
