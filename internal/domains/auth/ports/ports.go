package ports

import (
	"context"

	"github.com/Apurer/pawmatch/internal/domains/auth/domain"
)

// Authenticator performs the login exchange against the remote service.
// Failures are *domain.AuthError.
type Authenticator interface {
	Login(ctx context.Context, creds domain.Credentials) error
}

// Prober checks whether the current session is accepted. It returns
// domain.ErrSessionExpired when the service rejects the session.
type Prober interface {
	Probe(ctx context.Context) error
}

// SessionObserver is notified of session lifecycle events.
type SessionObserver func(ctx context.Context, event domain.SessionEvent)

// RedirectFunc receives the instruction to show the login entry point.
type RedirectFunc func(ctx context.Context, redirect domain.Redirect)

// Service is the login use case exposed to presentation layers.
type Service interface {
	Login(ctx context.Context, name, email string) error
}
