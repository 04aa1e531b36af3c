package application

import (
	"context"
	"errors"
	"io"
	"log/slog"

	authdomain "github.com/Apurer/pawmatch/internal/domains/auth/domain"
	"github.com/Apurer/pawmatch/internal/domains/dogs/domain"
	"github.com/Apurer/pawmatch/internal/domains/dogs/ports"
)

// Matcher submits the selection for a match and resolves the answer
// against the dogs currently shown. The selection is never modified.
type Matcher struct {
	catalog ports.Catalog
	gate    ports.Gate
	results *Results
	logger  *slog.Logger
}

func NewMatcher(catalog ports.Catalog, gate ports.Gate, results *Results, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Matcher{catalog: catalog, gate: gate, results: results, logger: logger}
}

// Match returns domain.ErrEmptySelection without calling the service when
// nothing is selected.
func (m *Matcher) Match(ctx context.Context) (*domain.MatchOutcome, error) {
	ids := m.results.SelectedIDs()
	if len(ids) == 0 {
		return nil, domain.ErrEmptySelection
	}
	result, err := m.catalog.Match(ctx, ids)
	if err != nil {
		if errors.Is(err, authdomain.ErrSessionExpired) {
			m.gate.Invalidate(ctx)
		}
		return nil, err
	}
	outcome := &domain.MatchOutcome{MatchedID: result.MatchedID}
	if dog, ok := m.results.Dog(result.MatchedID); ok {
		outcome.Dog = &dog
	} else {
		m.logger.LogAttrs(ctx, slog.LevelInfo, "matched dog not on current page", slog.String("dog.id", result.MatchedID))
	}
	return outcome, nil
}
