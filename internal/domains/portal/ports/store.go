package ports

import (
	"context"
	"errors"

	"github.com/Apurer/pawmatch/internal/domains/portal/domain"
)

var ErrNotFound = errors.New("portal session not found")

// SessionStore persists portal session snapshots.
type SessionStore interface {
	Save(ctx context.Context, snapshot *domain.Snapshot) error
	// Get returns ErrNotFound for unknown or expired ids.
	Get(ctx context.Context, id string) (*domain.Snapshot, error)
	Delete(ctx context.Context, id string) error
	PurgeExpired(ctx context.Context) (int64, error)
}
