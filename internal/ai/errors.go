package ai

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotConfigured means no provider is available for the call.
	ErrNotConfigured = errors.New("ai: not configured")
	// ErrUnauthorized means the provider rejected the credentials.
	ErrUnauthorized = errors.New("ai: unauthorized")
	// ErrUnavailable means the call failed for any other reason.
	ErrUnavailable = errors.New("ai: unavailable")
)

// APIError is a non-200 response from a provider.
type APIError struct {
	Provider string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.Status, e.Body)
}

// Is classifies the error as ErrUnauthorized for 401 and 403 and as
// ErrUnavailable for every other status.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrUnavailable:
		return e.Status != http.StatusUnauthorized && e.Status != http.StatusForbidden
	}
	return false
}

// unavailable wraps a transport or decoding failure.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
