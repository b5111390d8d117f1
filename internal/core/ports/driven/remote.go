package driven

import (
	"context"

	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
)

// RemoteClient talks to the upload endpoint.
type RemoteClient interface {
	// Login exchanges credentials for a token.
	// Returns an empty token and no error when credentials are missing.
	Login(ctx context.Context, creds domain.Credentials) (string, error)

	// Upload sends a payload authenticated with token.
	// Returns an error wrapping domain.ErrUnauthorized when the token is rejected.
	// Any other non-2xx answer is returned as an error.
	Upload(ctx context.Context, token string, payload domain.Payload) (*domain.RemoteResponse, error)
}
