package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	authdomain "github.com/Apurer/pawmatch/internal/domains/auth/domain"
	"github.com/Apurer/pawmatch/internal/domains/dogs/domain"
	"github.com/Apurer/pawmatch/internal/domains/dogs/ports"
)

// Query owns the active criteria and keeps Results in step with them.
// Fetches are numbered as they are issued and only the most recently issued
// one may change Results, whatever order responses arrive in.
type Query struct {
	catalog ports.Catalog
	gate    ports.Gate
	results *Results
	logger  *slog.Logger

	mu       sync.Mutex
	criteria domain.Criteria
	issued   uint64
}

// QueryOption configures a Query.
type QueryOption func(*Query)

// WithQueryLogger injects a slog logger.
func WithQueryLogger(logger *slog.Logger) QueryOption {
	return func(q *Query) {
		q.logger = logger
	}
}

// WithInitialCriteria starts the query from c instead of the defaults.
func WithInitialCriteria(c domain.Criteria) QueryOption {
	return func(q *Query) {
		q.criteria = c.Normalize()
	}
}

func NewQuery(catalog ports.Catalog, gate ports.Gate, results *Results, opts ...QueryOption) *Query {
	q := &Query{
		catalog:  catalog,
		gate:     gate,
		results:  results,
		criteria: domain.DefaultCriteria(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(q)
		}
	}
	if q.logger == nil {
		q.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return q
}

// Criteria returns a copy of the active criteria.
func (q *Query) Criteria() domain.Criteria {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.criteria.Clone()
}

// Load fetches the first page for the active criteria.
func (q *Query) Load(ctx context.Context) error {
	if !q.gate.Authenticated() {
		return domain.ErrNotAuthenticated
	}
	q.mu.Lock()
	criteria, seq := q.issueLocked()
	q.mu.Unlock()
	return q.fetch(ctx, criteria, "", seq)
}

func (q *Query) ToggleBreed(ctx context.Context, breed string) error {
	return q.mutate(ctx, func(c domain.Criteria) (domain.Criteria, error) {
		return c.ToggleBreed(breed), nil
	})
}

func (q *Query) AddZipCode(ctx context.Context, zip string) error {
	return q.mutate(ctx, func(c domain.Criteria) (domain.Criteria, error) {
		return c.AddZipCode(zip)
	})
}

func (q *Query) RemoveZipCode(ctx context.Context, zip string) error {
	return q.mutate(ctx, func(c domain.Criteria) (domain.Criteria, error) {
		return c.RemoveZipCode(zip), nil
	})
}

func (q *Query) SetAgeRange(ctx context.Context, ageMin, ageMax *int) error {
	return q.mutate(ctx, func(c domain.Criteria) (domain.Criteria, error) {
		return c.WithAgeRange(ageMin, ageMax)
	})
}

func (q *Query) SetSort(ctx context.Context, sort string) error {
	return q.mutate(ctx, func(c domain.Criteria) (domain.Criteria, error) {
		return c.WithSort(sort)
	})
}

func (q *Query) SetPageSize(ctx context.Context, size int) error {
	return q.mutate(ctx, func(c domain.Criteria) (domain.Criteria, error) {
		return c.WithSize(size)
	})
}

// Clear resets every filter to the defaults and fetches the first page.
func (q *Query) Clear(ctx context.Context) error {
	return q.mutate(ctx, func(domain.Criteria) (domain.Criteria, error) {
		return domain.DefaultCriteria(), nil
	})
}

// NextPage fetches the page after the current one with unchanged criteria.
func (q *Query) NextPage(ctx context.Context) error {
	return q.turn(ctx, func(page domain.Page) (*domain.Cursor, error) {
		if !page.HasNext() {
			return nil, domain.ErrNoNextPage
		}
		return page.Next, nil
	})
}

// PrevPage fetches the page before the current one with unchanged criteria.
func (q *Query) PrevPage(ctx context.Context) error {
	return q.turn(ctx, func(page domain.Page) (*domain.Cursor, error) {
		if !page.HasPrev() {
			return nil, domain.ErrNoPrevPage
		}
		return page.Prev, nil
	})
}

func (q *Query) turn(ctx context.Context, pick func(domain.Page) (*domain.Cursor, error)) error {
	if !q.gate.Authenticated() {
		return domain.ErrNotAuthenticated
	}
	q.mu.Lock()
	cursor, err := pick(q.results.Page())
	if err != nil {
		q.mu.Unlock()
		return err
	}
	criteria, seq := q.issueLocked()
	q.mu.Unlock()
	return q.fetch(ctx, criteria, cursor.From, seq)
}

// mutate applies fn to the criteria. A rejected change leaves both the
// criteria and Results untouched and makes no call. The new criteria and
// their sequence number are taken under one lock, so the last committed
// criteria always belong to the last issued fetch.
func (q *Query) mutate(ctx context.Context, fn func(domain.Criteria) (domain.Criteria, error)) error {
	if !q.gate.Authenticated() {
		return domain.ErrNotAuthenticated
	}
	q.mu.Lock()
	next, err := fn(q.criteria.Clone())
	if err != nil {
		q.mu.Unlock()
		return err
	}
	q.criteria = next
	criteria, seq := q.issueLocked()
	q.mu.Unlock()
	return q.fetch(ctx, criteria, "", seq)
}

// issueLocked numbers a fetch of the active criteria. q.mu must be held.
func (q *Query) issueLocked() (domain.Criteria, uint64) {
	q.issued++
	return q.criteria.Clone(), q.issued
}

func (q *Query) fetch(ctx context.Context, criteria domain.Criteria, cursor string, seq uint64) error {
	page, dogs, err := q.load(ctx, criteria, cursor)

	q.mu.Lock()
	if seq != q.issued {
		latest := q.issued
		q.mu.Unlock()
		q.logger.LogAttrs(ctx, slog.LevelDebug, "discarding superseded search", slog.Uint64("seq", seq), slog.Uint64("latest", latest))
		return nil
	}
	switch {
	case err == nil:
		q.results.replace(*page, dogs)
	case errors.Is(err, authdomain.ErrSessionExpired):
		// Results stay as they are; the gate takes over.
	default:
		q.results.clear()
	}
	q.mu.Unlock()

	if err != nil {
		if errors.Is(err, authdomain.ErrSessionExpired) {
			q.gate.Invalidate(ctx)
		} else {
			q.logger.LogAttrs(ctx, slog.LevelWarn, "search failed", slog.String("error", err.Error()))
		}
		return err
	}
	return nil
}

func (q *Query) load(ctx context.Context, criteria domain.Criteria, cursor string) (*domain.Page, []domain.Dog, error) {
	page, err := q.catalog.Search(ctx, criteria, cursor)
	if err != nil {
		return nil, nil, err
	}
	dogs, err := q.catalog.FetchByIDs(ctx, page.ResultIDs)
	if err != nil {
		return nil, nil, err
	}
	return page, dogs, nil
}
