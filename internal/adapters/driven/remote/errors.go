package remote

import (
	"fmt"
	"net/http"

	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
)

// APIError represents a non-2xx answer from the remote.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote: API error %d (URL: %s)", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("remote: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// Is lets errors.Is(err, domain.ErrUnauthorized) match a 401.
func (e *APIError) Is(target error) bool {
	return target == domain.ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}
