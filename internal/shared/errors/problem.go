// Package errors provides RFC 7807 Problem Details for HTTP APIs.
package errors

import (
	"fmt"
	"net/http"
)

// ProblemDetail represents an RFC 7807 Problem Details response.
// See: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	// Type is a URI reference that identifies the problem type.
	Type string `json:"type"`
	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`
	// Status is the HTTP status code for this occurrence.
	Status int `json:"status"`
	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`
	// Instance is a URI reference that identifies the specific occurrence.
	Instance string `json:"instance,omitempty"`
	// Extensions holds additional problem-specific properties.
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Error implements the error interface.
func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithExtension returns a copy with an additional extension property.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	if p.Extensions == nil {
		p.Extensions = make(map[string]any)
	}
	p.Extensions[key] = value
	return p
}

// Common problem types as URI references.
const (
	TypeValidation    = "/problems/validation-error"
	TypeNotFound      = "/problems/not-found"
	TypeInternal      = "/problems/internal-error"
	TypeLoginRequired = "/problems/login-required"
	TypeBadRequest    = "/problems/bad-request"
	TypeAuthFailed    = "/problems/authentication-failed"
	TypeRateLimited   = "/problems/rate-limited"
	TypeUpstream      = "/problems/upstream-error"
	TypeUnavailable   = "/problems/upstream-unavailable"
)

// Pre-defined problem templates for common scenarios.
var (
	// ErrNotFound is sent for paths the portal does not serve.
	ErrNotFound = ProblemDetail{
		Type:   TypeNotFound,
		Title:  "Not Found",
		Status: http.StatusNotFound,
	}

	// ErrValidation indicates the request failed validation.
	ErrValidation = ProblemDetail{
		Type:   TypeValidation,
		Title:  "Validation Error",
		Status: http.StatusBadRequest,
	}

	// ErrBadRequest indicates the request was malformed.
	ErrBadRequest = ProblemDetail{
		Type:   TypeBadRequest,
		Title:  "Bad Request",
		Status: http.StatusBadRequest,
	}

	// ErrInternal indicates an unexpected server error.
	ErrInternal = ProblemDetail{
		Type:   TypeInternal,
		Title:  "Internal Server Error",
		Status: http.StatusInternalServerError,
	}

	// ErrLoginRequired is sent alongside a See Other redirect to the login page.
	ErrLoginRequired = ProblemDetail{
		Type:   TypeLoginRequired,
		Title:  "Login Required",
		Status: http.StatusSeeOther,
	}

	// ErrAuthFailed indicates the dog service rejected the credentials.
	ErrAuthFailed = ProblemDetail{
		Type:   TypeAuthFailed,
		Title:  "Authentication Failed",
		Status: http.StatusUnauthorized,
	}

	// ErrRateLimited mirrors a 429 from the dog service.
	ErrRateLimited = ProblemDetail{
		Type:   TypeRateLimited,
		Title:  "Too Many Requests",
		Status: http.StatusTooManyRequests,
	}

	// ErrUpstream indicates the dog service answered with an error.
	ErrUpstream = ProblemDetail{
		Type:   TypeUpstream,
		Title:  "Upstream Error",
		Status: http.StatusBadGateway,
	}

	// ErrUnavailable indicates the dog service could not be reached.
	ErrUnavailable = ProblemDetail{
		Type:   TypeUnavailable,
		Title:  "Service Unavailable",
		Status: http.StatusServiceUnavailable,
	}
)

// NewValidationProblem creates a validation error with field-level details.
func NewValidationProblem(fieldErrors map[string]string) ProblemDetail {
	return ErrValidation.WithExtension("fields", fieldErrors)
}

// NewRouteNotFoundProblem names the method and path that matched no route.
func NewRouteNotFoundProblem(method, path string) ProblemDetail {
	return ErrNotFound.
		WithDetail(fmt.Sprintf("%s %s is not a portal endpoint", method, path)).
		WithExtension("method", method)
}

// NewLoginRequiredProblem points the client at the login page.
func NewLoginRequiredProblem(location string) ProblemDetail {
	return ErrLoginRequired.
		WithDetail("Please log in to continue.").
		WithExtension("location", location)
}
