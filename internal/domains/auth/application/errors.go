package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/pawmatch/internal/domains/auth/domain"
)

var (
	// ErrInvalidInput signals the credentials failed local validation.
	ErrInvalidInput = errors.New("invalid credentials input")
	// ErrAuthentication wraps a classified login failure.
	ErrAuthentication = errors.New("authentication failed")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrEmptyEmail) ||
		errors.Is(err, domain.ErrInvalidEmail) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	var authErr *domain.AuthError
	if errors.As(err, &authErr) {
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	return fmt.Errorf("%w: %w", ErrAuthentication, &domain.AuthError{Kind: domain.AuthConnectivity, Err: err})
}

// UserMessage renders err as visitor facing text. Unknown errors fall back
// to err.Error().
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if msg, ok := domain.ValidationMessage(err); ok {
		return msg
	}
	var authErr *domain.AuthError
	if errors.As(err, &authErr) {
		return authErr.UserMessage()
	}
	return err.Error()
}
