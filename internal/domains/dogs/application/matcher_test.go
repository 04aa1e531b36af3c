package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/pawmatch/internal/domains/dogs/domain"
)

func TestMatch_EmptySelectionMakesNoCall(t *testing.T) {
	catalog := newFakeCatalog(sampleDogs(2)...)
	browser := NewBrowser(catalog, newFakeGate(), nil)

	_, err := browser.Matcher.Match(context.Background())
	require.ErrorIs(t, err, domain.ErrEmptySelection)
	require.Empty(t, catalog.matches)
}

func TestMatch_ResolvesAgainstShownDogs(t *testing.T) {
	catalog := newFakeCatalog(sampleDogs(2)...)
	catalog.matchID = "d1"
	browser := NewBrowser(catalog, newFakeGate(), nil)
	require.NoError(t, browser.Query.Load(context.Background()))
	browser.Results.ToggleSelection("d1")
	browser.Results.ToggleSelection("d2")

	outcome, err := browser.Matcher.Match(context.Background())
	require.NoError(t, err)
	require.True(t, outcome.Available())
	require.Equal(t, "Dog 1", outcome.Dog.Name)
	require.Equal(t, [][]string{{"d1", "d2"}}, catalog.matches)
	require.Equal(t, []string{"d1", "d2"}, browser.Results.SelectedIDs())
}

func TestMatch_UnknownIDIsUnavailable(t *testing.T) {
	catalog := newFakeCatalog(sampleDogs(2)...)
	catalog.matchID = "d9"
	browser := NewBrowser(catalog, newFakeGate(), nil)
	require.NoError(t, browser.Query.Load(context.Background()))
	browser.Results.ToggleSelection("d1")

	outcome, err := browser.Matcher.Match(context.Background())
	require.NoError(t, err)
	require.Equal(t, "d9", outcome.MatchedID)
	require.False(t, outcome.Available())
}

func TestMatch_FailureKeepsSelection(t *testing.T) {
	catalog := newFakeCatalog(sampleDogs(2)...)
	catalog.matchErr = &domain.QueryError{Op: domain.OpMatch, Status: 502}
	gate := newFakeGate()
	browser := NewBrowser(catalog, gate, nil)
	browser.Results.ToggleSelection("d2")

	_, err := browser.Matcher.Match(context.Background())
	require.Equal(t, "Failed to find match. Please try again.", domain.UserMessage(err))
	require.Equal(t, []string{"d2"}, browser.Results.SelectedIDs())
	require.Zero(t, gate.invalidations.Load())
}

func TestSelection_SurvivesNewSearch(t *testing.T) {
	catalog := newFakeCatalog(sampleDogs(2)...)
	browser := NewBrowser(catalog, newFakeGate(), nil)
	require.NoError(t, browser.Query.Load(context.Background()))
	require.True(t, browser.Results.ToggleSelection("d1"))

	require.NoError(t, browser.Query.ToggleBreed(context.Background(), "Dachshund"))
	require.Equal(t, []string{"d1"}, browser.State().Selected)

	browser.Results.ClearSelection()
	require.Empty(t, browser.Results.SelectedIDs())
}
