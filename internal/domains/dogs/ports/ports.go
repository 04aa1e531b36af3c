package ports

import (
	"context"

	"github.com/Apurer/pawmatch/internal/domains/dogs/domain"
)

// Catalog is the remote dog service. Session rejection surfaces as an error
// wrapping the auth domain's ErrSessionExpired, other failures as
// *domain.QueryError.
type Catalog interface {
	Search(ctx context.Context, criteria domain.Criteria, cursor string) (*domain.Page, error)
	FetchByIDs(ctx context.Context, ids []string) ([]domain.Dog, error)
	Match(ctx context.Context, ids []string) (*domain.MatchResult, error)
}

// Gate is the slice of the session gate the dogs context relies on.
type Gate interface {
	Authenticated() bool
	Invalidate(ctx context.Context) bool
}
