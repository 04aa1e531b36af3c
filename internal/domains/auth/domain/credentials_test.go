package domain

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCredentials_TrimsAndValidates(t *testing.T) {
	creds, err := NewCredentials("  Jane Doe ", " jane@example.com\t")
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", creds.Name)
	require.Equal(t, "jane@example.com", creds.Email)
}

func TestNewCredentials_Rejections(t *testing.T) {
	cases := []struct {
		name, email string
		want        error
		message     string
	}{
		{"   ", "jane@example.com", ErrEmptyName, "Please enter your full name."},
		{"", "", ErrEmptyName, "Please enter your full name."},
		{"Jane", "  ", ErrEmptyEmail, "Please enter your email address."},
		{"Jane", "not-an-email", ErrInvalidEmail, "Please enter a valid email address."},
	}
	for _, tc := range cases {
		_, err := NewCredentials(tc.name, tc.email)
		require.ErrorIs(t, err, tc.want)
		msg, ok := ValidationMessage(err)
		require.True(t, ok)
		require.Equal(t, tc.message, msg)
	}
}

func TestClassifyLoginStatus(t *testing.T) {
	require.Equal(t, AuthMalformedInput, ClassifyLoginStatus(http.StatusBadRequest))
	require.Equal(t, AuthInvalidCredentials, ClassifyLoginStatus(http.StatusUnauthorized))
	require.Equal(t, AuthRateLimited, ClassifyLoginStatus(http.StatusTooManyRequests))
	require.Equal(t, AuthServerError, ClassifyLoginStatus(http.StatusServiceUnavailable))
	require.Equal(t, AuthFailed, ClassifyLoginStatus(http.StatusTeapot))
}

func TestAuthError_ServerMessageOverridesKind(t *testing.T) {
	err := &AuthError{Kind: AuthRateLimited, Status: http.StatusTooManyRequests}
	require.Equal(t, "Too many attempts. Please try again later.", err.UserMessage())

	err.Message = "Slow down, friend."
	require.Equal(t, "Slow down, friend.", err.UserMessage())
}

func TestRedirect_Location(t *testing.T) {
	require.Equal(t, "/auth?returnUrl=%2Fsearch%3Fpage%3D2", NewRedirect("/search?page=2").Location())
	require.Equal(t, "/auth", NewRedirect("https://evil.example").Location())
	require.Equal(t, "/auth", NewRedirect("//evil.example").Location())
	require.Equal(t, "/search", SafeReturnURL("/auth?returnUrl=x", DefaultLandingPath))
}
