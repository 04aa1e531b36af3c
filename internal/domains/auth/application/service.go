package application

import (
	"context"
	"io"
	"log/slog"

	"github.com/Apurer/pawmatch/internal/domains/auth/domain"
	"github.com/Apurer/pawmatch/internal/domains/auth/ports"
)

// Service validates credentials, logs in and announces the new session.
type Service struct {
	auth   ports.Authenticator
	events *Events
	logger *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger injects a slog logger.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(auth ports.Authenticator, events *Events, opts ...ServiceOption) *Service {
	s := &Service{auth: auth, events: events}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// Login never calls the service when validation fails. On success every
// session observer is notified before Login returns.
func (s *Service) Login(ctx context.Context, name, email string) error {
	creds, err := domain.NewCredentials(name, email)
	if err != nil {
		return mapError(err)
	}
	if err := s.auth.Login(ctx, creds); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "login rejected", slog.String("error", err.Error()))
		return mapError(err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "login succeeded")
	if s.events != nil {
		s.events.Publish(ctx, domain.SessionEstablished)
	}
	return nil
}

var _ ports.Service = (*Service)(nil)
