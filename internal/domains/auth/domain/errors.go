package domain

import (
	"errors"
	"net/http"
)

// ErrSessionExpired signals that the service rejected the session cookie.
var ErrSessionExpired = errors.New("session expired")

// AuthErrorKind classifies a failed login.
type AuthErrorKind int

const (
	AuthFailed AuthErrorKind = iota
	AuthMalformedInput
	AuthInvalidCredentials
	AuthRateLimited
	AuthServerError
	AuthConnectivity
)

func (k AuthErrorKind) String() string {
	switch k {
	case AuthMalformedInput:
		return "malformed_input"
	case AuthInvalidCredentials:
		return "invalid_credentials"
	case AuthRateLimited:
		return "rate_limited"
	case AuthServerError:
		return "server_error"
	case AuthConnectivity:
		return "connectivity"
	default:
		return "failed"
	}
}

// Message is the text shown to the visitor for the kind.
func (k AuthErrorKind) Message() string {
	switch k {
	case AuthMalformedInput:
		return "Invalid name or email format. Please check your input."
	case AuthInvalidCredentials:
		return "Invalid credentials. Please check your name and email."
	case AuthRateLimited:
		return "Too many attempts. Please try again later."
	case AuthServerError:
		return "Server error. Please try again later."
	case AuthConnectivity:
		return "Network error. Please check your connection and try again."
	default:
		return "Authentication failed. Please check your credentials."
	}
}

// ClassifyLoginStatus maps a non-2xx login status to a kind.
func ClassifyLoginStatus(status int) AuthErrorKind {
	switch {
	case status == http.StatusBadRequest:
		return AuthMalformedInput
	case status == http.StatusUnauthorized:
		return AuthInvalidCredentials
	case status == http.StatusTooManyRequests:
		return AuthRateLimited
	case status >= http.StatusInternalServerError:
		return AuthServerError
	default:
		return AuthFailed
	}
}

// AuthError is a classified login failure.
type AuthError struct {
	Kind   AuthErrorKind
	Status int
	// Message overrides the kind's text when the service supplied one.
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return "login " + e.Kind.String() + ": " + e.Err.Error()
	}
	return "login " + e.Kind.String()
}

func (e *AuthError) Unwrap() error { return e.Err }

// UserMessage returns the server message when present, else the kind's text.
func (e *AuthError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Message()
}

// ValidationMessage returns the visitor facing text for a credential error.
func ValidationMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrEmptyName):
		return "Please enter your full name.", true
	case errors.Is(err, ErrEmptyEmail):
		return "Please enter your email address.", true
	case errors.Is(err, ErrInvalidEmail):
		return "Please enter a valid email address.", true
	}
	return "", false
}
