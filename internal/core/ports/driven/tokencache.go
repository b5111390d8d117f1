package driven

// TokenCache stores a single credential token at a fixed location.
type TokenCache interface {
	// Load returns the cached token, or an empty string on any read failure.
	Load() string

	// Save replaces the cached token.
	Save(token string) error

	// Clear removes the cached token. Clearing a missing token is not an error.
	Clear() error

	// Path returns the cache location.
	Path() string
}
