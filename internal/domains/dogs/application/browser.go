package application

import (
	"log/slog"

	"github.com/Apurer/pawmatch/internal/domains/dogs/domain"
	"github.com/Apurer/pawmatch/internal/domains/dogs/ports"
)

// Browser bundles the search, selection and match use cases of one visitor.
type Browser struct {
	Query   *Query
	Results *Results
	Matcher *Matcher
}

// BrowserState is everything a view needs to render the search page.
type BrowserState struct {
	Criteria domain.Criteria
	View
}

func NewBrowser(catalog ports.Catalog, gate ports.Gate, logger *slog.Logger, opts ...QueryOption) *Browser {
	results := NewResults()
	opts = append([]QueryOption{WithQueryLogger(logger)}, opts...)
	return &Browser{
		Query:   NewQuery(catalog, gate, results, opts...),
		Results: results,
		Matcher: NewMatcher(catalog, gate, results, logger),
	}
}

// State captures criteria and results together.
func (b *Browser) State() BrowserState {
	return BrowserState{Criteria: b.Query.Criteria(), View: b.Results.Snapshot()}
}
