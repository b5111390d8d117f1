// Package auth persists the API credential token between runs.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gmacarthur/innersync-desktop/internal/core/ports/driven"
)

// Ensure FileTokenCache implements the interface.
var _ driven.TokenCache = (*FileTokenCache)(nil)

// FileTokenCache keeps one token in a file readable only by the owner.
type FileTokenCache struct {
	path string
	mu   sync.Mutex
}

// NewFileTokenCache creates a token cache at path.
func NewFileTokenCache(path string) *FileTokenCache {
	return &FileTokenCache{path: path}
}

// Load returns the cached token, or "" if the file is missing or unreadable.
func (c *FileTokenCache) Load() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Save writes token, creating the parent directory if needed.
// Saving an empty token clears the cache.
func (c *FileTokenCache) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return c.Clear()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}
	if err := os.WriteFile(c.path, []byte(token+"\n"), 0600); err != nil {
		return fmt.Errorf("writing token: %w", err)
	}
	return nil
}

// Clear removes the cached token. A missing file is not an error.
func (c *FileTokenCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token: %w", err)
	}
	return nil
}

// Path returns the token file path.
func (c *FileTokenCache) Path() string {
	return c.path
}
