package fetchapi

import (
	"context"
	"errors"
	"fmt"

	fetchclient "github.com/Apurer/pawmatch/internal/clients/http/fetchapi"
	"github.com/Apurer/pawmatch/internal/domains/auth/domain"
	"github.com/Apurer/pawmatch/internal/domains/auth/ports"
)

// Authenticator adapts the service client to the auth ports.
type Authenticator struct {
	client *fetchclient.Client
}

func NewAuthenticator(client *fetchclient.Client) *Authenticator {
	return &Authenticator{client: client}
}

// Login returns a *domain.AuthError on every failure.
func (a *Authenticator) Login(ctx context.Context, creds domain.Credentials) error {
	if a == nil || a.client == nil {
		return &domain.AuthError{Kind: domain.AuthConnectivity, Err: errors.New("fetch api client not configured")}
	}
	err := a.client.Login(ctx, fetchclient.LoginRequest{Name: creds.Name, Email: creds.Email})
	if err == nil {
		return nil
	}
	if apiErr, ok := fetchclient.AsAPIError(err); ok {
		return &domain.AuthError{
			Kind:    domain.ClassifyLoginStatus(apiErr.StatusCode),
			Status:  apiErr.StatusCode,
			Message: apiErr.Message,
			Err:     err,
		}
	}
	return &domain.AuthError{Kind: domain.AuthConnectivity, Err: err}
}

// Probe maps 401/403 to domain.ErrSessionExpired.
func (a *Authenticator) Probe(ctx context.Context) error {
	if a == nil || a.client == nil {
		return errors.New("fetch api client not configured")
	}
	err := a.client.Probe(ctx)
	if err == nil {
		return nil
	}
	if apiErr, ok := fetchclient.AsAPIError(err); ok && apiErr.SessionExpired() {
		return fmt.Errorf("%w: %w", domain.ErrSessionExpired, err)
	}
	return fmt.Errorf("probe session: %w", err)
}

var (
	_ ports.Authenticator = (*Authenticator)(nil)
	_ ports.Prober        = (*Authenticator)(nil)
)
