package fetchapi

import (
	"context"
	"errors"
	"fmt"

	fetchclient "github.com/Apurer/pawmatch/internal/clients/http/fetchapi"
	authdomain "github.com/Apurer/pawmatch/internal/domains/auth/domain"
	"github.com/Apurer/pawmatch/internal/domains/dogs/domain"
	"github.com/Apurer/pawmatch/internal/domains/dogs/ports"
)

// Catalog serves the dogs ports from the remote service.
type Catalog struct {
	client *fetchclient.Client
}

func NewCatalog(client *fetchclient.Client) *Catalog {
	return &Catalog{client: client}
}

func (c *Catalog) Search(ctx context.Context, criteria domain.Criteria, cursor string) (*domain.Page, error) {
	resp, err := c.client.Search(ctx, ToSearchParams(criteria, cursor))
	if err != nil {
		return nil, mapError(domain.OpSearch, err, true)
	}
	return FromSearchResponse(resp), nil
}

// FetchByIDs treats every failure, including 401/403, as a query error.
func (c *Catalog) FetchByIDs(ctx context.Context, ids []string) ([]domain.Dog, error) {
	records, err := c.client.FetchDogs(ctx, ids)
	if err != nil {
		return nil, mapError(domain.OpFetch, err, false)
	}
	return FromDogs(records), nil
}

func (c *Catalog) Match(ctx context.Context, ids []string) (*domain.MatchResult, error) {
	resp, err := c.client.Match(ctx, ids)
	if err != nil {
		if errors.Is(err, fetchclient.ErrNoIDs) {
			return nil, domain.ErrEmptySelection
		}
		return nil, mapError(domain.OpMatch, err, true)
	}
	return &domain.MatchResult{MatchedID: resp.Match}, nil
}

func mapError(op string, err error, sessionAware bool) error {
	apiErr, ok := fetchclient.AsAPIError(err)
	if ok && sessionAware && apiErr.SessionExpired() {
		return fmt.Errorf("%s dogs: %w: %w", op, authdomain.ErrSessionExpired, err)
	}
	qe := &domain.QueryError{Op: op, Err: err}
	if ok {
		qe.Status = apiErr.StatusCode
	}
	return qe
}

var _ ports.Catalog = (*Catalog)(nil)
