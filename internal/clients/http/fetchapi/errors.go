package fetchapi

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable wraps transport failures, timeouts and an open circuit.
	ErrUnavailable = errors.New("fetch api unavailable")
	// ErrNoIDs is returned by Match when called without candidates.
	ErrNoIDs = errors.New("at least one dog id is required")

	errServerStatus = errors.New("fetch api server error")
)

// APIError describes a non-2xx response from the service.
type APIError struct {
	Endpoint   string
	StatusCode int
	Status     string
	// Message is the server supplied {"message": ...} text, when present.
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Endpoint, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Status)
}

// SessionExpired reports whether the response signals a missing or expired session.
func (e *APIError) SessionExpired() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
